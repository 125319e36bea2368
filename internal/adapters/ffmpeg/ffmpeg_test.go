package ffmpeg

import (
	"reflect"
	"testing"
	"time"

	"github.com/jaa/music-convert/internal/encode"
	"github.com/jaa/music-convert/internal/plan"
)

func TestBuildExecSpecDecodeWithNormalization(t *testing.T) {
	adapter := New()
	spec, err := adapter.BuildExecSpec(
		plan.Step{Adapter: plan.AdapterFFmpeg, Input: plan.AAC, Output: plan.WAV, Normalize: true},
		encode.StepIO{Input: "/in/a.m4a", Output: "/stage/a.wav", Source: "/in/a.m4a"},
		time.Minute,
	)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := []string{"-loglevel", "error", "-i", "/in/a.m4a", "-filter:a", "volume=replaygain=album", "/stage/a.wav"}
	if !reflect.DeepEqual(spec.Args, want) {
		t.Fatalf("expected args %v, got %v", want, spec.Args)
	}
}

func TestBuildExecSpecEncodeCopiesMetadataFromSource(t *testing.T) {
	adapter := New()
	spec, err := adapter.BuildExecSpec(
		plan.Step{Adapter: plan.AdapterFFmpeg, Input: plan.WAV, Output: plan.AAC, BitrateKbps: 192},
		encode.StepIO{Input: "/stage/a.wav", Output: "/stage/a.m4a", Source: "/in/a.ogg"},
		time.Minute,
	)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := []string{
		"-loglevel", "error",
		"-i", "/stage/a.wav",
		"-i", "/in/a.ogg",
		"-map", "0:a", "-map_metadata", "1",
		"-c:a", "aac",
		"-b:a", "192k",
		"/stage/a.m4a",
	}
	if !reflect.DeepEqual(spec.Args, want) {
		t.Fatalf("expected args %v, got %v", want, spec.Args)
	}
}

func TestBuildExecSpecSinglePassReencodeSkipsMetadataInput(t *testing.T) {
	adapter := New()
	spec, err := adapter.BuildExecSpec(
		plan.Step{Adapter: plan.AdapterFFmpeg, Input: plan.AAC, Output: plan.AAC, BitrateKbps: 128},
		encode.StepIO{Input: "/in/a.m4a", Output: "/stage/a.m4a", Source: "/in/a.m4a"},
		time.Minute,
	)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := []string{"-loglevel", "error", "-i", "/in/a.m4a", "-c:a", "aac", "-b:a", "128k", "/stage/a.m4a"}
	if !reflect.DeepEqual(spec.Args, want) {
		t.Fatalf("expected args %v, got %v", want, spec.Args)
	}
}

func TestBuildExecSpecRejectsMissingBitrate(t *testing.T) {
	adapter := New()
	_, err := adapter.BuildExecSpec(
		plan.Step{Output: plan.AAC},
		encode.StepIO{Input: "a.wav", Output: "a.m4a"},
		time.Minute,
	)
	if err == nil {
		t.Fatalf("expected error for zero bitrate")
	}
}
