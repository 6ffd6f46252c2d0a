package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"furymod/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// A fake game install (executable plus assets directory) and an empty mods
// folder are created under the temp root.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ModsDir = filepath.Join(base, "Mods")
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Game.ExePath = filepath.Join(base, "game", "DokaponSoF.exe")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	for _, dir := range []string{builder.cfg.Paths.ModsDir, builder.cfg.AssetsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	if _, err := os.Stat(builder.cfg.Game.ExePath); os.IsNotExist(err) {
		WriteBytes(t, builder.cfg.Game.ExePath, PEImage(PESection{Name: ".text", Size: 0x40}))
	}

	return builder.cfg
}

// WithRequireExpected enables strict hex patching.
func WithRequireExpected() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Hex.RequireExpected = true
	}
}

// WithGameExe writes image as the game executable.
func WithGameExe(image []byte) ConfigOption {
	return func(b *configBuilder) {
		WriteBytes(b.t, b.cfg.Game.ExePath, image)
	}
}

// WithVanillaExe writes image as the pristine executable hex edits start from.
func WithVanillaExe(image []byte) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "vanilla", "DokaponSoF.exe")
		WriteBytes(b.t, path, image)
		b.cfg.Game.VanillaExePath = path
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default furymod external
// binaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "opusenc"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ModsDir)
}

// ModDir creates Mods/<mod>/<category> and returns its path.
func ModDir(t testing.TB, cfg *config.Config, mod, category string) string {
	t.Helper()
	dir := filepath.Join(cfg.Paths.ModsDir, mod, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	return dir
}
