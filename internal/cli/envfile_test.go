package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnvFilesSetsUnprotectedKeys(t *testing.T) {
	tmp := t.TempDir()
	content := "MCONV_LIBRARY_ROOT=/from/dotenv\n" +
		"# comment\n" +
		"export MCONV_WORKERS=4\n" +
		"QUOTED=\"a b\"\n" +
		"SINGLE='c d'\n"
	if err := os.WriteFile(filepath.Join(tmp, ".env"), []byte(content), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	got := map[string]string{}
	err := loadDotEnvFiles(tmp, []string{"PROTECTED=1"}, func(key, value string) error {
		got[key] = value
		return nil
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got["MCONV_LIBRARY_ROOT"] != "/from/dotenv" {
		t.Fatalf("expected plain value, got %q", got["MCONV_LIBRARY_ROOT"])
	}
	if got["MCONV_WORKERS"] != "4" {
		t.Fatalf("expected export prefix stripped, got %q", got["MCONV_WORKERS"])
	}
	if got["QUOTED"] != "a b" || got["SINGLE"] != "c d" {
		t.Fatalf("expected quotes stripped, got %q and %q", got["QUOTED"], got["SINGLE"])
	}
}

func TestLoadDotEnvFilesDoesNotOverrideEnvironment(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, ".env"), []byte("KEEP=dotenv\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	err := loadDotEnvFiles(tmp, []string{"KEEP=real"}, func(key, value string) error {
		t.Fatalf("protected key %q must not be set", key)
		return nil
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestLoadDotEnvFilesRejectsMalformedLines(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, ".env"), []byte("NOT A PAIR\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	err := loadDotEnvFiles(tmp, nil, func(string, string) error { return nil })
	if err == nil {
		t.Fatalf("expected parse error for malformed line")
	}
}

func TestLoadDotEnvFilesMissingFilesAreFine(t *testing.T) {
	if err := loadDotEnvFiles(t.TempDir(), nil, func(string, string) error { return nil }); err != nil {
		t.Fatalf("missing dotenv files must not error: %v", err)
	}
}
