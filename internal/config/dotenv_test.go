package config

import (
	"os"
	"path/filepath"
	"testing"
)

// unsetForTest removes keys for the duration of a test so the loader sees
// them as absent rather than empty.
func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func TestLoadDotEnv_LoadsValuesAndIgnoresNoise(t *testing.T) {
	unsetForTest(t, "QC_A", "QC_B", "QC_C")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := []byte(`
# comment

QC_A=one
export QC_B=two
QC_C="three"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	if got := os.Getenv("QC_A"); got != "one" {
		t.Fatalf("QC_A=%q, want %q", got, "one")
	}
	if got := os.Getenv("QC_B"); got != "two" {
		t.Fatalf("QC_B=%q, want %q", got, "two")
	}
	if got := os.Getenv("QC_C"); got != "three" {
		t.Fatalf("QC_C=%q, want %q", got, "three")
	}
}

func TestLoadDotEnv_DoesNotOverwriteExistingEnv(t *testing.T) {
	t.Setenv("QC_KEEP", "already")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("QC_KEEP=fromfile\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	if got := os.Getenv("QC_KEEP"); got != "already" {
		t.Fatalf("QC_KEEP=%q, want %q", got, "already")
	}
}

func TestLoadDotEnv_StripsSingleQuotes(t *testing.T) {
	unsetForTest(t, "QC_Q")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("QC_Q='hello world'\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	if got := os.Getenv("QC_Q"); got != "hello world" {
		t.Fatalf("QC_Q=%q, want %q", got, "hello world")
	}
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
}
