package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"furymod/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("FURYMOD_GAME_EXE", "")
	t.Setenv("FURYMOD_MODS_DIR", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "furymod", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if !filepath.IsAbs(cfg.Paths.ModsDir) || filepath.Base(cfg.Paths.ModsDir) != "Mods" {
		t.Fatalf("expected absolute Mods dir, got %q", cfg.Paths.ModsDir)
	}
	if cfg.Sounds.OpusencBinary != "opusenc" {
		t.Fatalf("unexpected opusenc binary: %q", cfg.Sounds.OpusencBinary)
	}
	if cfg.Sounds.EncodeTimeout != 120 {
		t.Fatalf("unexpected encode timeout: %d", cfg.Sounds.EncodeTimeout)
	}
	if cfg.Video.EncodeTimeout != 1800 {
		t.Fatalf("unexpected video encode timeout: %d", cfg.Video.EncodeTimeout)
	}
	if cfg.Hex.RequireExpected {
		t.Fatal("expected require_expected disabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Game.ExePath != "" {
		t.Fatalf("expected empty exe path, got %q", cfg.Game.ExePath)
	}
	if err := cfg.ValidateInstall(); err == nil {
		t.Fatal("expected ValidateInstall to require game.exe_path")
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "furymod.toml")
	exePath := filepath.Join(tempDir, "game", "Game.exe")
	if err := os.MkdirAll(filepath.Dir(exePath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(exePath, []byte("MZ"), 0o644); err != nil {
		t.Fatalf("write exe: %v", err)
	}

	type payload struct {
		Game struct {
			ExePath      string `toml:"exe_path"`
			AssetsSubdir string `toml:"assets_subdir"`
		} `toml:"game"`
		Sounds struct {
			EncodeTimeout int `toml:"encode_timeout"`
		} `toml:"sounds"`
		Hex struct {
			RequireExpected bool `toml:"require_expected"`
		} `toml:"hex"`
	}
	custom := payload{}
	custom.Game.ExePath = `"` + exePath + `"`
	custom.Game.AssetsSubdir = `GameData\app`
	custom.Sounds.EncodeTimeout = 30
	custom.Hex.RequireExpected = true
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Game.ExePath != exePath {
		t.Fatalf("expected quotes stripped from exe path, got %q", cfg.Game.ExePath)
	}
	wantAssets := filepath.Join(tempDir, "game", "GameData", "app")
	if cfg.AssetsDir() != wantAssets {
		t.Fatalf("unexpected assets dir: got %q want %q", cfg.AssetsDir(), wantAssets)
	}
	if cfg.SourceExePath() != exePath {
		t.Fatalf("expected source exe to fall back to exe path, got %q", cfg.SourceExePath())
	}
	if cfg.Sounds.EncodeTimeout != 30 {
		t.Fatalf("expected encode timeout 30, got %d", cfg.Sounds.EncodeTimeout)
	}
	if !cfg.Hex.RequireExpected {
		t.Fatal("expected require_expected from file")
	}
	if err := cfg.ValidateInstall(); err != nil {
		t.Fatalf("ValidateInstall: %v", err)
	}
}

func TestEnvVarFallbackForGameExe(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	exePath := filepath.Join(tempDir, "Game.exe")
	t.Setenv("FURYMOD_GAME_EXE", exePath)
	t.Setenv("FURYMOD_MODS_DIR", filepath.Join(tempDir, "MyMods"))

	cfg, _, _, err := config.Load(filepath.Join(tempDir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Game.ExePath != exePath {
		t.Fatalf("expected exe path from env, got %q", cfg.Game.ExePath)
	}
	if cfg.Paths.ModsDir != filepath.Join(tempDir, "MyMods") {
		t.Fatalf("expected mods dir from env, got %q", cfg.Paths.ModsDir)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "exe_path") {
		t.Fatalf("sample config missing exe_path: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.WorkDir, "furymod") {
		t.Fatalf("expected work dir to contain furymod, got %q", cfg.Paths.WorkDir)
	}
	if cfg.Sounds.EncodeTimeout <= 0 {
		t.Fatalf("expected positive encode timeout in sample, got %d", cfg.Sounds.EncodeTimeout)
	}
	if cfg.Video.EncodeTimeout <= 0 {
		t.Fatalf("expected positive video encode timeout in sample, got %d", cfg.Video.EncodeTimeout)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Sounds.EncodeTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive timeout")
	}

	cfg = config.Default()
	cfg.Video.EncodeTimeout = -5
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "video.encode_timeout") {
		t.Fatalf("expected video timeout error, got %v", err)
	}

	cfg = config.Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log format")
	}

	cfg = config.Default()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log level")
	}

	cfg = config.Default()
	cfg.Game.AssetsSubdir = filepath.Join("..", "elsewhere")
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when assets dir escapes the game dir")
	}

	cfg = config.Default()
	cfg.Logging.RetentionDays = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative retention")
	}
}
