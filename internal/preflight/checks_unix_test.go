//go:build !windows

package preflight

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckFileWritable_ReadOnly(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission bits")
	}
	path := filepath.Join(t.TempDir(), "game.exe")
	if err := os.WriteFile(path, []byte("MZ"), 0o444); err != nil {
		t.Fatal(err)
	}
	if res := CheckFileWritable("Game executable", path); res.Passed {
		t.Fatalf("expected read-only file to fail: %+v", res)
	}
}
