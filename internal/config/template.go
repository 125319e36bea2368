package config

import "fmt"

func DefaultTemplate() string {
	return fmt.Sprintf(`version: 1
library:
  root: "~/Music/library"
profile:
  target_format: "mp3"
  vbr_quality: %d
  bitrate_kbps: %d
  min_bitrate_kbps: %d
  normalize: true
defaults:
  workers: %d
  staging_dir: ""
  continue_on_error: true
  command_timeout_seconds: %d
`, 5, 256, 128, DefaultConfig().Defaults.Workers, 600)
}
