package encode

import (
	"context"
	"errors"
	"testing"
)

func TestFFProbeProberParsesBitrate(t *testing.T) {
	prober := NewFFProbeProber(&fakeRunner{run: func(spec ExecSpec) ExecResult {
		return ExecResult{ExitCode: 0, StdoutTail: "256000\n"}
	}})
	prober.LookPath = foundLookPath

	kbps, err := prober.BitrateKbps(context.Background(), "/in/a.mp3")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if kbps != 256 {
		t.Fatalf("expected 256 kbps, got %d", kbps)
	}
}

func TestFFProbeProberUnknownBitrate(t *testing.T) {
	prober := NewFFProbeProber(&fakeRunner{run: func(spec ExecSpec) ExecResult {
		return ExecResult{ExitCode: 0, StdoutTail: "N/A\n"}
	}})
	prober.LookPath = foundLookPath

	kbps, err := prober.BitrateKbps(context.Background(), "/in/a.mp3")
	if err != nil || kbps != 0 {
		t.Fatalf("expected unknown bitrate (0, nil), got (%d, %v)", kbps, err)
	}
}

func TestFFProbeProberMissingBinaryDegradesToUnknown(t *testing.T) {
	prober := NewFFProbeProber(&fakeRunner{run: func(spec ExecSpec) ExecResult {
		t.Fatalf("runner must not be called without ffprobe")
		return ExecResult{}
	}})
	prober.LookPath = func(string) (string, error) { return "", errors.New("not found") }

	kbps, err := prober.BitrateKbps(context.Background(), "/in/a.mp3")
	if err != nil || kbps != 0 {
		t.Fatalf("expected (0, nil) without ffprobe, got (%d, %v)", kbps, err)
	}
}

func TestFFProbeProberFailureReturnsError(t *testing.T) {
	prober := NewFFProbeProber(&fakeRunner{run: func(spec ExecSpec) ExecResult {
		return ExecResult{ExitCode: 1, StderrTail: "no such file"}
	}})
	prober.LookPath = foundLookPath

	if _, err := prober.BitrateKbps(context.Background(), "/in/missing.mp3"); err == nil {
		t.Fatalf("expected error for ffprobe failure")
	}
}
