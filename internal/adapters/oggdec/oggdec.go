// Package oggdec decodes Ogg Vorbis to WAV through ogg123.
package oggdec

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
	return plan.AdapterOggDec
}

func (a *Adapter) Binary() string {
	return "ogg123"
}

func (a *Adapter) BuildExecSpec(step plan.Step, files encode.StepIO, timeout time.Duration) (encode.ExecSpec, error) {
	if step.Input != plan.Vorbis || step.Output != plan.WAV {
		return encode.ExecSpec{}, fmt.Errorf("ogg123 only decodes vorbis to wav, got %s to %s", step.Input, step.Output)
	}

	// ogg123 applies ReplayGain tags during decode when they are present,
	// so normalization needs no extra flag here.
	args := []string{"-q", "-d", "wav", "-f", files.Output, files.Input}

	return encode.ExecSpec{
		Bin:            a.Binary(),
		Args:           args,
		Timeout:        timeout,
		DisplayCommand: strings.Join(append([]string{a.Binary()}, args...), " "),
	}, nil
}
