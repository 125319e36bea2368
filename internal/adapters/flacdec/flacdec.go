// Package flacdec decodes FLAC to WAV through the flac reference tool.
package flacdec

import (
	"fmt"
	"strings"
	"time"

	"github.com/jaa/music-convert/internal/encode"
	"github.com/jaa/music-convert/internal/plan"
)

type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Kind() string {
	return plan.AdapterFlacDec
}

func (a *Adapter) Binary() string {
	return "flac"
}

func (a *Adapter) BuildExecSpec(step plan.Step, files encode.StepIO, timeout time.Duration) (encode.ExecSpec, error) {
	if step.Input != plan.FLAC || step.Output != plan.WAV {
		return encode.ExecSpec{}, fmt.Errorf("flac only decodes flac to wav, got %s to %s", step.Input, step.Output)
	}

	args := []string{"--totally-silent", "-d"}
	if step.Normalize {
		args = append(args, "--apply-replaygain-which-is-not-lossless")
	}
	args = append(args, "-o", files.Output, files.Input)

	return encode.ExecSpec{
		Bin:            a.Binary(),
		Args:           args,
		Timeout:        timeout,
		DisplayCommand: strings.Join(append([]string{a.Binary()}, args...), " "),
	}, nil
}
