package config

import "runtime"

type TargetFormat string

const (
	TargetMP3 TargetFormat = "mp3"
	TargetAAC TargetFormat = "aac"
)

type Config struct {
	Version  int      `yaml:"version"`
	Library  Library  `yaml:"library"`
	Profile  Profile  `yaml:"profile"`
	Defaults Defaults `yaml:"defaults"`
}

type Library struct {
	Root string `yaml:"root"`
}

// Profile is the conversion profile threaded from the CLI down to the
// planner and adapters; it is never read from ambient state.
type Profile struct {
	TargetFormat   TargetFormat `yaml:"target_format"`
	VBRQuality     int          `yaml:"vbr_quality"`
	BitrateKbps    int          `yaml:"bitrate_kbps"`
	MinBitrateKbps int          `yaml:"min_bitrate_kbps"`
	Normalize      bool         `yaml:"normalize"`
}

type Defaults struct {
	Workers               int    `yaml:"workers"`
	StagingDir            string `yaml:"staging_dir"`
	ContinueOnError       bool   `yaml:"continue_on_error"`
	CommandTimeoutSeconds int    `yaml:"command_timeout_seconds"`
}

func DefaultConfig() Config {
	return Config{
		Version: 1,
		Library: Library{},
		Profile: Profile{
			TargetFormat:   TargetMP3,
			VBRQuality:     5,
			BitrateKbps:    256,
			MinBitrateKbps: 128,
			Normalize:      true,
		},
		Defaults: Defaults{
			Workers:               runtime.NumCPU(),
			StagingDir:            "",
			ContinueOnError:       true,
			CommandTimeoutSeconds: 600,
		},
	}
}
