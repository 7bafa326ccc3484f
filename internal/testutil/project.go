package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lithammer/dedent"
)

// WriteProject creates a temporary project directory holding the given files.
// Keys are slash-separated paths relative to the project root; contents are
// dedented so fixtures can be indented inside test functions.
func WriteProject(t testing.TB, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			t.Fatalf("failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(dedent.Dedent(content)), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
	return root
}
