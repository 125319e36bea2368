package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type LoadOptions struct {
	ExplicitPath string
	WorkingDir   string
	Env          map[string]string
}

type fileConfig struct {
	Version  *int         `yaml:"version"`
	Library  fileLibrary  `yaml:"library"`
	Profile  fileProfile  `yaml:"profile"`
	Defaults fileDefaults `yaml:"defaults"`
}

type fileLibrary struct {
	Root *string `yaml:"root"`
}

type fileProfile struct {
	TargetFormat   *string `yaml:"target_format"`
	VBRQuality     *int    `yaml:"vbr_quality"`
	BitrateKbps    *int    `yaml:"bitrate_kbps"`
	MinBitrateKbps *int    `yaml:"min_bitrate_kbps"`
	Normalize      *bool   `yaml:"normalize"`
}

type fileDefaults struct {
	Workers               *int    `yaml:"workers"`
	StagingDir            *string `yaml:"staging_dir"`
	ContinueOnError       *bool   `yaml:"continue_on_error"`
	CommandTimeoutSeconds *int    `yaml:"command_timeout_seconds"`
}

func Load(opts LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	cwd := opts.WorkingDir
	if strings.TrimSpace(cwd) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("resolve working directory: %w", err)
		}
		cwd = wd
	}

	env := opts.Env
	if env == nil {
		env = osEnvMap()
	}

	if explicit := strings.TrimSpace(opts.ExplicitPath); explicit != "" {
		if err := mergeFile(&cfg, explicit, true); err != nil {
			return Config{}, err
		}
	} else {
		userPath, err := UserConfigPath()
		if err != nil {
			return Config{}, err
		}
		if err := mergeFile(&cfg, userPath, false); err != nil {
			return Config{}, err
		}

		if err := mergeFile(&cfg, ProjectConfigPath(cwd), false); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg, env); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func mergeFile(cfg *Config, path string, required bool) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file does not exist: %s", path)
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(payload, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Version != nil {
		cfg.Version = *fc.Version
	}
	if fc.Library.Root != nil {
		cfg.Library.Root = strings.TrimSpace(*fc.Library.Root)
	}
	if fc.Profile.TargetFormat != nil {
		cfg.Profile.TargetFormat = TargetFormat(strings.ToLower(strings.TrimSpace(*fc.Profile.TargetFormat)))
	}
	if fc.Profile.VBRQuality != nil {
		cfg.Profile.VBRQuality = *fc.Profile.VBRQuality
	}
	if fc.Profile.BitrateKbps != nil {
		cfg.Profile.BitrateKbps = *fc.Profile.BitrateKbps
	}
	if fc.Profile.MinBitrateKbps != nil {
		cfg.Profile.MinBitrateKbps = *fc.Profile.MinBitrateKbps
	}
	if fc.Profile.Normalize != nil {
		cfg.Profile.Normalize = *fc.Profile.Normalize
	}
	if fc.Defaults.Workers != nil {
		cfg.Defaults.Workers = *fc.Defaults.Workers
	}
	if fc.Defaults.StagingDir != nil {
		cfg.Defaults.StagingDir = strings.TrimSpace(*fc.Defaults.StagingDir)
	}
	if fc.Defaults.ContinueOnError != nil {
		cfg.Defaults.ContinueOnError = *fc.Defaults.ContinueOnError
	}
	if fc.Defaults.CommandTimeoutSeconds != nil {
		cfg.Defaults.CommandTimeoutSeconds = *fc.Defaults.CommandTimeoutSeconds
	}

	return nil
}

func applyEnvOverrides(cfg *Config, env map[string]string) error {
	if value := strings.TrimSpace(env["MCONV_LIBRARY_ROOT"]); value != "" {
		cfg.Library.Root = value
	}
	if value := strings.TrimSpace(env["MCONV_TARGET_FORMAT"]); value != "" {
		cfg.Profile.TargetFormat = TargetFormat(strings.ToLower(value))
	}
	if value := strings.TrimSpace(env["MCONV_STAGING_DIR"]); value != "" {
		cfg.Defaults.StagingDir = value
	}
	if value := strings.TrimSpace(env["MCONV_WORKERS"]); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MCONV_WORKERS value %q: %w", value, err)
		}
		cfg.Defaults.Workers = parsed
	}
	if value := strings.TrimSpace(env["MCONV_NORMALIZE"]); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid MCONV_NORMALIZE value %q: %w", value, err)
		}
		cfg.Profile.Normalize = parsed
	}
	if value := strings.TrimSpace(env["MCONV_COMMAND_TIMEOUT_SECONDS"]); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MCONV_COMMAND_TIMEOUT_SECONDS value %q: %w", value, err)
		}
		cfg.Defaults.CommandTimeoutSeconds = parsed
	}
	return nil
}

func osEnvMap() map[string]string {
	result := map[string]string{}
	for _, pair := range os.Environ() {
		pieces := strings.SplitN(pair, "=", 2)
		if len(pieces) == 2 {
			result[pieces[0]] = pieces[1]
		}
	}
	return result
}
