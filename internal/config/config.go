package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ModsDir  string `toml:"mods_dir"`
	WorkDir  string `toml:"work_dir"`
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Game locates the installed game.
type Game struct {
	ExePath string `toml:"exe_path"`
	// VanillaExePath is the unmodified executable hex edits start from.
	// Empty means ExePath itself.
	VanillaExePath string `toml:"vanilla_exe_path"`
	AssetsSubdir   string `toml:"assets_subdir"`
}

// Sounds contains configuration for the external audio encoders.
type Sounds struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	OpusencBinary string `toml:"opusenc_binary"`
	EncodeTimeout int    `toml:"encode_timeout"`
}

// Video contains configuration for cutscene re-encoding. The ffmpeg binary
// is shared with [sounds].
type Video struct {
	EncodeTimeout int `toml:"encode_timeout"`
}

// Hex contains configuration for executable patching.
type Hex struct {
	RequireExpected bool `toml:"require_expected"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for furymod.
//
// Configuration sections by subsystem:
//   - Paths: mods folder plus working, state, and log directories
//   - Game: installed executable and asset directory layout
//   - Sounds: ffmpeg/opusenc binaries and per-item timeout
//   - Video: per-cutscene encode timeout
//   - Hex: patch engine strictness
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	Game    Game    `toml:"game"`
	Sounds  Sounds  `toml:"sounds"`
	Video   Video   `toml:"video"`
	Hex     Hex     `toml:"hex"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/furymod/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/furymod/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("furymod.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the installer writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// GameDir returns the directory holding the game executable.
func (c *Config) GameDir() string {
	if c.Game.ExePath == "" {
		return ""
	}
	return filepath.Dir(c.Game.ExePath)
}

// AssetsDir returns the directory holding the game's loose assets and sound packs.
func (c *Config) AssetsDir() string {
	dir := c.GameDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, c.Game.AssetsSubdir)
}

// SourceExePath returns the executable hex edits are applied on top of.
func (c *Config) SourceExePath() string {
	if c.Game.VanillaExePath != "" {
		return c.Game.VanillaExePath
	}
	return c.Game.ExePath
}

// LedgerPath returns the SQLite audit ledger location.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.StateDir, "ledger.db")
}

// LockPath returns the install lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "install.lock")
}

// LogPath returns the persistent log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "furymod.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
