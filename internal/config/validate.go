package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid config"
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(e.Problems, "; "))
}

func Validate(cfg Config) error {
	problems := []string{}

	if cfg.Version != 1 {
		problems = append(problems, "version must be 1")
	}

	if strings.TrimSpace(cfg.Library.Root) == "" {
		problems = append(problems, "library.root must be set")
	} else {
		root, err := ExpandPath(cfg.Library.Root)
		if err != nil {
			problems = append(problems, "library.root is invalid")
		} else if !filepath.IsAbs(root) {
			problems = append(problems, "library.root must resolve to an absolute path")
		}
	}

	switch cfg.Profile.TargetFormat {
	case TargetMP3, TargetAAC:
	default:
		problems = append(problems, fmt.Sprintf("profile.target_format must be mp3 or aac, got %q", cfg.Profile.TargetFormat))
	}

	if cfg.Profile.VBRQuality < 0 || cfg.Profile.VBRQuality > 9 {
		problems = append(problems, "profile.vbr_quality must be between 0 and 9")
	}
	if cfg.Profile.BitrateKbps <= 0 {
		problems = append(problems, "profile.bitrate_kbps must be > 0")
	}
	if cfg.Profile.MinBitrateKbps < 0 {
		problems = append(problems, "profile.min_bitrate_kbps must be >= 0")
	}

	if cfg.Defaults.Workers <= 0 {
		problems = append(problems, "defaults.workers must be > 0")
	}
	if cfg.Defaults.CommandTimeoutSeconds <= 0 {
		problems = append(problems, "defaults.command_timeout_seconds must be > 0")
	}
	if staging := strings.TrimSpace(cfg.Defaults.StagingDir); staging != "" {
		expanded, err := ExpandPath(staging)
		if err != nil {
			problems = append(problems, "defaults.staging_dir is invalid")
		} else if !filepath.IsAbs(expanded) {
			problems = append(problems, "defaults.staging_dir must resolve to an absolute path")
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
