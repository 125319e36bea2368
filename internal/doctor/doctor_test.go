package doctor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jaa/music-convert/internal/config"
)

func testChecker(missing map[string]bool) *Checker {
	return &Checker{
		LookPath: func(name string) (string, error) {
			if missing[name] {
				return "", errors.New("not found")
			}
			return "/usr/bin/" + name, nil
		},
		ReadVersion: func(_ context.Context, name string) (string, error) {
			return name + " version 1.2.3", nil
		},
		CheckWritable: func(string) error { return nil },
	}
}

func testDoctorConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Library.Root = "/music/library"
	return cfg
}

func TestCheckAllToolsPresent(t *testing.T) {
	report := testChecker(nil).Check(context.Background(), testDoctorConfig())
	if report.HasErrors() {
		t.Fatalf("expected clean report, got %+v", report.Checks)
	}
	found := false
	for _, check := range report.Checks {
		if strings.Contains(check.Message, "lame 1.2.3 found at /usr/bin/lame") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected version in lame check, got %+v", report.Checks)
	}
}

func TestCheckMissingEncoderIsError(t *testing.T) {
	report := testChecker(map[string]bool{"lame": true}).Check(context.Background(), testDoctorConfig())
	if !report.HasErrors() {
		t.Fatalf("expected error for missing target encoder")
	}
	if report.ErrorCount() != 1 {
		t.Fatalf("expected exactly one error, got %d", report.ErrorCount())
	}
}

func TestCheckMissingDecoderOnlyWarns(t *testing.T) {
	report := testChecker(map[string]bool{"ogg123": true, "flac": true}).Check(context.Background(), testDoctorConfig())
	if report.HasErrors() {
		t.Fatalf("missing optional decoders must not be errors: %+v", report.Checks)
	}
	warns := 0
	for _, check := range report.Checks {
		if check.Severity == SeverityWarn {
			warns++
		}
	}
	if warns != 2 {
		t.Fatalf("expected 2 warnings, got %d", warns)
	}
}

func TestCheckAACTargetRequiresFFmpegOnly(t *testing.T) {
	cfg := testDoctorConfig()
	cfg.Profile.TargetFormat = config.TargetAAC

	report := testChecker(map[string]bool{"lame": true}).Check(context.Background(), cfg)
	if report.HasErrors() {
		t.Fatalf("lame must not be required for aac target: %+v", report.Checks)
	}

	report = testChecker(map[string]bool{"ffmpeg": true}).Check(context.Background(), cfg)
	if !report.HasErrors() {
		t.Fatalf("ffmpeg must be required for aac target")
	}
}

func TestCheckSkipsAnalyzersWithoutNormalize(t *testing.T) {
	cfg := testDoctorConfig()
	cfg.Profile.Normalize = false

	report := testChecker(map[string]bool{"vorbisgain": true, "metaflac": true, "aacgain": true}).Check(context.Background(), cfg)
	for _, check := range report.Checks {
		if strings.Contains(check.Message, "gain") || strings.Contains(check.Message, "metaflac") {
			t.Fatalf("analyzers must not be checked when normalize is off: %+v", check)
		}
	}
}

func TestCheckUnwritableLibraryRootIsError(t *testing.T) {
	checker := testChecker(nil)
	checker.CheckWritable = func(path string) error {
		return errors.New("permission denied")
	}

	report := checker.Check(context.Background(), testDoctorConfig())
	if !report.HasErrors() {
		t.Fatalf("expected error for unwritable library root")
	}
}

func TestExtractVersionHandlesTwoPartVersions(t *testing.T) {
	version, err := extractVersion("LAME 64bits version 3.100 (http://lame.sf.net)")
	if err != nil || version != "3.100" {
		t.Fatalf("expected 3.100, got %q (%v)", version, err)
	}
	version, err = extractVersion("ffmpeg version 6.1.1-3ubuntu5")
	if err != nil || version != "6.1.1" {
		t.Fatalf("expected 6.1.1, got %q (%v)", version, err)
	}
	if _, err := extractVersion("no digits here"); err == nil {
		t.Fatalf("expected error for versionless output")
	}
}
