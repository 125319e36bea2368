// Package ffmpeg handles the AAC paths: decoding AAC sources to WAV and
// encoding to AAC output.
package ffmpeg

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
	return plan.AdapterFFmpeg
}

func (a *Adapter) Binary() string {
	return "ffmpeg"
}

func (a *Adapter) BuildExecSpec(step plan.Step, files encode.StepIO, timeout time.Duration) (encode.ExecSpec, error) {
	var args []string

	switch step.Output {
	case plan.WAV:
		args = []string{"-loglevel", "error", "-i", files.Input}
		if step.Normalize {
			args = append(args, "-filter:a", "volume=replaygain=album")
		}
		args = append(args, files.Output)
	case plan.AAC:
		if step.BitrateKbps <= 0 {
			return encode.ExecSpec{}, fmt.Errorf("aac encode needs a positive bitrate, got %d", step.BitrateKbps)
		}
		args = []string{"-loglevel", "error", "-i", files.Input}
		// WAV intermediates carry no metadata; pull tags from the
		// original track in a second input.
		if files.Source != "" && files.Source != files.Input {
			args = append(args, "-i", files.Source, "-map", "0:a", "-map_metadata", "1")
		}
		args = append(args,
			"-c:a", "aac",
			"-b:a", fmt.Sprintf("%dk", step.BitrateKbps),
			files.Output,
		)
	default:
		return encode.ExecSpec{}, fmt.Errorf("ffmpeg adapter cannot produce %s output", step.Output)
	}

	return encode.ExecSpec{
		Bin:            a.Binary(),
		Args:           args,
		Timeout:        timeout,
		DisplayCommand: strings.Join(append([]string{a.Binary()}, args...), " "),
	}, nil
}
