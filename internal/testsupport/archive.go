package testsupport

import (
	"path/filepath"
	"testing"

	"furymod/internal/config"
	"furymod/internal/pck"
)

// WriteArchive writes a PCK archive holding entries to path.
func WriteArchive(t testing.TB, path string, entries ...pck.Entry) {
	t.Helper()
	if err := pck.New(entries...).Write(path); err != nil {
		t.Fatalf("write archive %s: %v", path, err)
	}
}

// WriteGameArchive writes a PCK archive named name into the game's assets
// directory and returns its path.
func WriteGameArchive(t testing.TB, cfg *config.Config, name string, entries ...pck.Entry) string {
	t.Helper()
	path := filepath.Join(cfg.AssetsDir(), name)
	WriteArchive(t, path, entries...)
	return path
}

// LoadArchive loads the archive at path or fails the test.
func LoadArchive(t testing.TB, path string) *pck.Archive {
	t.Helper()
	archive, err := pck.Load(path)
	if err != nil {
		t.Fatalf("load archive %s: %v", path, err)
	}
	return archive
}
