package encode

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Prober reports the audio bitrate of a file in kbit/s. Zero means
// unknown; the planner treats unknown bitrates as pass-through quality.
type Prober interface {
	BitrateKbps(ctx context.Context, path string) (int, error)
}

// FFProbeProber shells out to ffprobe. A missing ffprobe binary is not
// an error: probing degrades to "unknown" instead of failing discovery.
type FFProbeProber struct {
	Runner   ExecRunner
	LookPath func(name string) (string, error)
	Timeout  time.Duration
}

func NewFFProbeProber(runner ExecRunner) *FFProbeProber {
	return &FFProbeProber{
		Runner:   runner,
		LookPath: exec.LookPath,
		Timeout:  30 * time.Second,
	}
}

func (p *FFProbeProber) BitrateKbps(ctx context.Context, path string) (int, error) {
	bin, err := p.LookPath("ffprobe")
	if err != nil {
		return 0, nil
	}

	spec := ExecSpec{
		Bin: bin,
		Args: []string{
			"-v", "error",
			"-select_streams", "a:0",
			"-show_entries", "format=bit_rate",
			"-of", "default=noprint_wrappers=1:nokey=1",
			path,
		},
		Timeout:        p.Timeout,
		DisplayCommand: "ffprobe " + path,
	}

	result := p.Runner.Run(ctx, spec)
	if result.ExitCode != 0 {
		return 0, fmt.Errorf("ffprobe %s: %s", path, lastLine(result.StderrTail))
	}

	raw := strings.TrimSpace(result.StdoutTail)
	if raw == "" || raw == "N/A" {
		return 0, nil
	}
	bps, err := strconv.Atoi(raw)
	if err != nil || bps <= 0 {
		return 0, nil
	}
	return bps / 1000, nil
}
