package lame

import (
	"reflect"
	"testing"
	"time"

	"github.com/jaa/music-convert/internal/encode"
	"github.com/jaa/music-convert/internal/plan"
)

func TestBuildExecSpecVBRArguments(t *testing.T) {
	adapter := New()
	spec, err := adapter.BuildExecSpec(
		plan.Step{Adapter: plan.AdapterLame, Input: plan.WAV, Output: plan.MP3, VBRQuality: 5},
		encode.StepIO{Input: "/stage/in.wav", Output: "/stage/out.mp3"},
		2*time.Minute,
	)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := []string{"-V5", "--silent", "/stage/in.wav", "/stage/out.mp3"}
	if !reflect.DeepEqual(spec.Args, want) {
		t.Fatalf("expected args %v, got %v", want, spec.Args)
	}
	if spec.Bin != "lame" {
		t.Fatalf("expected lame binary, got %q", spec.Bin)
	}
	if spec.Timeout != 2*time.Minute {
		t.Fatalf("expected timeout carried through, got %v", spec.Timeout)
	}
}

func TestBuildExecSpecRejectsBadQuality(t *testing.T) {
	adapter := New()
	_, err := adapter.BuildExecSpec(
		plan.Step{Output: plan.MP3, VBRQuality: 12},
		encode.StepIO{Input: "in.wav", Output: "out.mp3"},
		time.Minute,
	)
	if err == nil {
		t.Fatalf("expected error for vbr quality out of range")
	}
}

func TestBuildExecSpecRejectsNonMP3Output(t *testing.T) {
	adapter := New()
	_, err := adapter.BuildExecSpec(
		plan.Step{Output: plan.AAC},
		encode.StepIO{Input: "in.wav", Output: "out.m4a"},
		time.Minute,
	)
	if err == nil {
		t.Fatalf("expected error for non-mp3 output")
	}
}
