package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunValidate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "apps.json")
	mustWriteFile(t, path, `{
		"countries": ["fr", "us"],
		"apps": [{"name": "MySpotty", "id": "1234567"}]
	}`)

	if code := runValidate([]string{"-config", path}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func TestRunValidate_RejectsBadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "apps.json")
	mustWriteFile(t, path, `{"countries": ["france"], "apps": []}`)

	if code := runValidate([]string{"-config", path}); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.json")
	if code := runValidate([]string{"-config", path}); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	t.Parallel()

	if code := Run([]string{"frobnicate"}); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	if code := Run(nil); code != 2 {
		t.Fatalf("expected exit code 2 for no command, got %d", code)
	}
	if code := Run([]string{"help"}); code != 0 {
		t.Fatalf("expected exit code 0 for help, got %d", code)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}
