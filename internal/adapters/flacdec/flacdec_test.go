package flacdec

import (
	"reflect"
	"testing"
	"time"

	"github.com/jaa/music-convert/internal/encode"
	"github.com/jaa/music-convert/internal/plan"
)

func TestBuildExecSpecAppliesReplayGainWhenNormalizing(t *testing.T) {
	adapter := New()
	spec, err := adapter.BuildExecSpec(
		plan.Step{Adapter: plan.AdapterFlacDec, Input: plan.FLAC, Output: plan.WAV, Normalize: true},
		encode.StepIO{Input: "/in/a.flac", Output: "/stage/a.wav"},
		time.Minute,
	)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := []string{"--totally-silent", "-d", "--apply-replaygain-which-is-not-lossless", "-o", "/stage/a.wav", "/in/a.flac"}
	if !reflect.DeepEqual(spec.Args, want) {
		t.Fatalf("expected args %v, got %v", want, spec.Args)
	}
}

func TestBuildExecSpecSkipsReplayGainWithoutNormalize(t *testing.T) {
	adapter := New()
	spec, err := adapter.BuildExecSpec(
		plan.Step{Adapter: plan.AdapterFlacDec, Input: plan.FLAC, Output: plan.WAV},
		encode.StepIO{Input: "/in/a.flac", Output: "/stage/a.wav"},
		time.Minute,
	)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := []string{"--totally-silent", "-d", "-o", "/stage/a.wav", "/in/a.flac"}
	if !reflect.DeepEqual(spec.Args, want) {
		t.Fatalf("expected args %v, got %v", want, spec.Args)
	}
}
