package testsupport

import (
	"path/filepath"
	"testing"

	"clockdrift/internal/picks"
)

// WritePickFile writes rows as a pick table named name under dir and returns
// the path.
func WritePickFile(t testing.TB, dir, name string, rows []picks.Pick) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := picks.WriteFile(path, rows); err != nil {
		t.Fatalf("write pick file %s: %v", path, err)
	}
	return path
}
