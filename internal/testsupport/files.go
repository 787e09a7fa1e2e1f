package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path, including missing parent directories, with size
// bytes of deterministic filler content. Sizes below one are rounded up to
// a single byte so the file is never empty.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size < 1 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	content := make([]byte, size)
	for i := range content {
		content[i] = byte('a' + i%26)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
