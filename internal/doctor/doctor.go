// Package doctor runs preflight checks: external tools on PATH and
// target directories writable.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/jaa/music-convert/internal/config"
)

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

type Check struct {
	Severity Severity `json:"severity"`
	Name     string   `json:"name"`
	Message  string   `json:"message"`
}

type Report struct {
	Checks []Check `json:"checks"`
}

func (r Report) HasErrors() bool {
	for _, check := range r.Checks {
		if check.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (r Report) ErrorCount() int {
	count := 0
	for _, check := range r.Checks {
		if check.Severity == SeverityError {
			count++
		}
	}
	return count
}

type Checker struct {
	LookPath      func(string) (string, error)
	ReadVersion   func(context.Context, string) (string, error)
	CheckWritable func(string) error
}

func NewChecker() *Checker {
	return &Checker{
		LookPath:      exec.LookPath,
		ReadVersion:   defaultReadVersion,
		CheckWritable: checkDirWritable,
	}
}

type tool struct {
	Binary   string
	Required bool
	Purpose  string
}

// toolsFor lists the external tools a config can reach. Tools for the
// configured target format are required; source decoders and analyzers
// only warn, since a batch may never encounter those formats.
func toolsFor(cfg config.Config) []tool {
	tools := []tool{}
	switch cfg.Profile.TargetFormat {
	case config.TargetAAC:
		tools = append(tools, tool{Binary: "ffmpeg", Required: true, Purpose: "aac encoding"})
	default:
		tools = append(tools,
			tool{Binary: "lame", Required: true, Purpose: "mp3 encoding"},
			tool{Binary: "ffmpeg", Purpose: "aac source decoding"},
		)
	}
	tools = append(tools,
		tool{Binary: "ogg123", Purpose: "vorbis source decoding"},
		tool{Binary: "flac", Purpose: "flac source decoding"},
		tool{Binary: "ffprobe", Purpose: "bitrate probing"},
	)
	if cfg.Profile.Normalize {
		tools = append(tools,
			tool{Binary: "vorbisgain", Purpose: "vorbis loudness analysis"},
			tool{Binary: "metaflac", Purpose: "flac loudness analysis"},
			tool{Binary: "aacgain", Purpose: "mp3/aac loudness analysis"},
		)
	}
	return tools
}

func (c *Checker) Check(ctx context.Context, cfg config.Config) Report {
	report := Report{Checks: []Check{}}

	for _, t := range toolsFor(cfg) {
		location, err := c.LookPath(t.Binary)
		if err != nil {
			severity := SeverityWarn
			if t.Required {
				severity = SeverityError
			}
			report.Checks = append(report.Checks, Check{
				Severity: severity,
				Name:     "dependency",
				Message:  fmt.Sprintf("%s not found in PATH (%s)", t.Binary, t.Purpose),
			})
			continue
		}

		message := fmt.Sprintf("%s found at %s", t.Binary, location)
		if raw, versionErr := c.ReadVersion(ctx, t.Binary); versionErr == nil {
			if version, parseErr := extractVersion(raw); parseErr == nil {
				message = fmt.Sprintf("%s %s found at %s", t.Binary, version, location)
			}
		}
		report.Checks = append(report.Checks, Check{
			Severity: SeverityInfo,
			Name:     "dependency",
			Message:  message,
		})
	}

	report.Checks = append(report.Checks, c.writableCheck("library root", cfg.Library.Root))
	if cfg.Defaults.StagingDir != "" {
		report.Checks = append(report.Checks, c.writableCheck("staging dir", cfg.Defaults.StagingDir))
	}

	return report
}

func (c *Checker) writableCheck(label, path string) Check {
	if err := c.CheckWritable(path); err != nil {
		return Check{
			Severity: SeverityError,
			Name:     "filesystem",
			Message:  fmt.Sprintf("%s %s is not writable: %v", label, path, err),
		}
	}
	return Check{
		Severity: SeverityInfo,
		Name:     "filesystem",
		Message:  fmt.Sprintf("%s %s is writable", label, path),
	}
}

func defaultReadVersion(ctx context.Context, binary string) (string, error) {
	flag := "--version"
	switch binary {
	case "ffmpeg", "ffprobe":
		flag = "-version"
	case "aacgain":
		flag = "-v"
	}
	cmd := exec.CommandContext(ctx, binary, flag)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", err
	}
	return string(output), nil
}

func checkDirWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	file, err := os.CreateTemp(path, ".mconv-write-check-*")
	if err != nil {
		return err
	}
	name := file.Name()
	_ = file.Close()
	_ = os.Remove(name)
	return nil
}

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

func extractVersion(raw string) (string, error) {
	matches := versionPattern.FindStringSubmatch(raw)
	if matches == nil {
		return "", fmt.Errorf("no version found")
	}
	version := matches[1] + "." + matches[2]
	if matches[3] != "" {
		version += "." + matches[3]
	}
	return strings.TrimSpace(version), nil
}
