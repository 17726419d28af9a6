package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to name under dir, creating parent directories,
// and returns the full path. The test fails on any error.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	return writeFile(t, dir, name, content, 0o600)
}

// WriteExecutable is WriteFile for scripts that must be runnable.
func WriteExecutable(t testing.TB, dir, name, content string) string {
	t.Helper()
	return writeFile(t, dir, name, content, 0o700)
}

func writeFile(t testing.TB, dir, name, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
