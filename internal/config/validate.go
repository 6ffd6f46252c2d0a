package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateGame(); err != nil {
		return err
	}
	if err := c.validateSounds(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateInstall checks the settings that only matter when mods are
// actually installed: the game executable must exist.
func (c *Config) ValidateInstall() error {
	if strings.TrimSpace(c.Game.ExePath) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/furymod/config.toml"
		}
		return fmt.Errorf("game.exe_path is required. Set FURYMOD_GAME_EXE or edit %s (create with 'furymod config init')", defaultPath)
	}
	if err := requireFile("game.exe_path", c.Game.ExePath); err != nil {
		return err
	}
	if c.Game.VanillaExePath != "" {
		if err := requireFile("game.vanilla_exe_path", c.Game.VanillaExePath); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.ModsDir == "" {
		return errors.New("paths.mods_dir must be set")
	}
	if c.Paths.WorkDir == "" || c.Paths.StateDir == "" || c.Paths.LogDir == "" {
		return errors.New("paths.work_dir, paths.state_dir, and paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateGame() error {
	if filepath.IsAbs(c.Game.AssetsSubdir) {
		return errors.New("game.assets_subdir must be relative to the game directory")
	}
	if strings.HasPrefix(c.Game.AssetsSubdir, "..") {
		return errors.New("game.assets_subdir must stay inside the game directory")
	}
	return nil
}

func (c *Config) validateSounds() error {
	if c.Sounds.EncodeTimeout <= 0 {
		return errors.New("sounds.encode_timeout must be positive (seconds)")
	}
	if c.Video.EncodeTimeout <= 0 {
		return errors.New("video.encode_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero or positive")
	}
	return nil
}

func requireFile(field, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s: %s is a directory", field, path)
	}
	return nil
}
