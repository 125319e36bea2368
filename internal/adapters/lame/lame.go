// Package lame encodes WAV or MP3 input to VBR MP3.
package lame

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
	return plan.AdapterLame
}

func (a *Adapter) Binary() string {
	return "lame"
}

func (a *Adapter) BuildExecSpec(step plan.Step, files encode.StepIO, timeout time.Duration) (encode.ExecSpec, error) {
	if step.Output != plan.MP3 {
		return encode.ExecSpec{}, fmt.Errorf("lame cannot produce %s output", step.Output)
	}
	if step.VBRQuality < 0 || step.VBRQuality > 9 {
		return encode.ExecSpec{}, fmt.Errorf("vbr quality %d out of range 0..9", step.VBRQuality)
	}

	args := []string{
		fmt.Sprintf("-V%d", step.VBRQuality),
		"--silent",
		files.Input,
		files.Output,
	}

	return encode.ExecSpec{
		Bin:            a.Binary(),
		Args:           args,
		Timeout:        timeout,
		DisplayCommand: strings.Join(append([]string{a.Binary()}, args...), " "),
	}, nil
}
