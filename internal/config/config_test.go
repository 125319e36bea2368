package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config %s: %v", path, err)
	}
	return path
}

func TestLoadExplicitPathMergesOverDefaults(t *testing.T) {
	tmp := t.TempDir()
	path := writeConfig(t, tmp, "config.yaml", `
version: 1
library:
  root: /music/library
profile:
  target_format: aac
  bitrate_kbps: 192
`)

	cfg, err := Load(LoadOptions{ExplicitPath: path, WorkingDir: tmp, Env: map[string]string{}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Library.Root != "/music/library" {
		t.Fatalf("expected library root from file, got %q", cfg.Library.Root)
	}
	if cfg.Profile.TargetFormat != TargetAAC {
		t.Fatalf("expected aac target, got %q", cfg.Profile.TargetFormat)
	}
	if cfg.Profile.BitrateKbps != 192 {
		t.Fatalf("expected bitrate 192, got %d", cfg.Profile.BitrateKbps)
	}
	if cfg.Profile.VBRQuality != 5 {
		t.Fatalf("expected untouched default vbr quality 5, got %d", cfg.Profile.VBRQuality)
	}
	if !cfg.Profile.Normalize {
		t.Fatalf("expected normalize default true to survive partial file")
	}
}

func TestLoadExplicitPathMissingFileFails(t *testing.T) {
	tmp := t.TempDir()
	_, err := Load(LoadOptions{
		ExplicitPath: filepath.Join(tmp, "absent.yaml"),
		WorkingDir:   tmp,
		Env:          map[string]string{},
	})
	if err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestLoadProjectFileOverridesUserFile(t *testing.T) {
	tmp := t.TempDir()
	configHome := filepath.Join(tmp, "xdg")
	if err := os.MkdirAll(filepath.Join(configHome, "mconv"), 0o755); err != nil {
		t.Fatalf("mkdir xdg: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", configHome)
	writeConfig(t, filepath.Join(configHome, "mconv"), "config.yaml", `
version: 1
library:
  root: /from/user
profile:
  vbr_quality: 2
`)

	project := filepath.Join(tmp, "project")
	if err := os.MkdirAll(project, 0o755); err != nil {
		t.Fatalf("mkdir project: %v", err)
	}
	writeConfig(t, project, "mconv.yaml", `
library:
  root: /from/project
`)

	cfg, err := Load(LoadOptions{WorkingDir: project, Env: map[string]string{}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Library.Root != "/from/project" {
		t.Fatalf("expected project root to win, got %q", cfg.Library.Root)
	}
	if cfg.Profile.VBRQuality != 2 {
		t.Fatalf("expected user vbr quality 2 to survive, got %d", cfg.Profile.VBRQuality)
	}
}

func TestLoadEnvOverridesFiles(t *testing.T) {
	tmp := t.TempDir()
	path := writeConfig(t, tmp, "config.yaml", `
version: 1
library:
  root: /from/file
`)

	cfg, err := Load(LoadOptions{
		ExplicitPath: path,
		WorkingDir:   tmp,
		Env: map[string]string{
			"MCONV_LIBRARY_ROOT":  "/from/env",
			"MCONV_TARGET_FORMAT": "AAC",
			"MCONV_WORKERS":       "3",
			"MCONV_NORMALIZE":     "false",
		},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Library.Root != "/from/env" {
		t.Fatalf("expected env root override, got %q", cfg.Library.Root)
	}
	if cfg.Profile.TargetFormat != TargetAAC {
		t.Fatalf("expected lowercased env target format, got %q", cfg.Profile.TargetFormat)
	}
	if cfg.Defaults.Workers != 3 {
		t.Fatalf("expected 3 workers, got %d", cfg.Defaults.Workers)
	}
	if cfg.Profile.Normalize {
		t.Fatalf("expected normalize disabled via env")
	}
}

func TestLoadRejectsInvalidEnvNumbers(t *testing.T) {
	tmp := t.TempDir()
	_, err := Load(LoadOptions{
		WorkingDir: tmp,
		Env:        map[string]string{"MCONV_WORKERS": "many"},
	})
	if err == nil || !strings.Contains(err.Error(), "MCONV_WORKERS") {
		t.Fatalf("expected MCONV_WORKERS parse error, got %v", err)
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Library.Root = "/music/library"
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Version = 2
	cfg.Library.Root = ""
	cfg.Profile.TargetFormat = "flac"
	cfg.Profile.VBRQuality = 11
	cfg.Profile.BitrateKbps = 0
	cfg.Defaults.Workers = 0

	err := Validate(cfg)
	validation, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validation.Problems) < 6 {
		t.Fatalf("expected all problems collected, got %d: %v", len(validation.Problems), validation.Problems)
	}
}

func TestValidateRejectsRelativeLibraryRoot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Library.Root = "music/library"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected relative library root to fail validation")
	}
}

func TestExpandPathResolvesHomeAndEnv(t *testing.T) {
	t.Setenv("MCONV_TEST_DIR", "/opt/music")
	expanded, err := ExpandPath("$MCONV_TEST_DIR/library")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if expanded != "/opt/music/library" {
		t.Fatalf("expected env expansion, got %q", expanded)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	expanded, err = ExpandPath("~/music")
	if err != nil {
		t.Fatalf("expand home: %v", err)
	}
	if expanded != filepath.Join(home, "music") {
		t.Fatalf("expected home expansion, got %q", expanded)
	}
}

func TestDefaultTemplateParsesAndValidates(t *testing.T) {
	tmp := t.TempDir()
	path := writeConfig(t, tmp, "config.yaml", DefaultTemplate())

	cfg, err := Load(LoadOptions{ExplicitPath: path, WorkingDir: tmp, Env: map[string]string{}})
	if err != nil {
		t.Fatalf("template should parse: %v", err)
	}
	if cfg.Version != 1 {
		t.Fatalf("expected template version 1, got %d", cfg.Version)
	}
}
