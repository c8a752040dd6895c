package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteArtifact creates a fake extracted media file of the given size so
// store and sweeper tests have something on disk. Sizes at or below zero
// produce a one-byte file.
func WriteArtifact(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	payload := bytes.Repeat([]byte{0xAB}, int(size))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
