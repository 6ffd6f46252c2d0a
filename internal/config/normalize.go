package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeGame(); err != nil {
		return err
	}
	c.normalizeSounds()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("FURYMOD_MODS_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.ModsDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.ModsDir) == "" {
		c.Paths.ModsDir = defaultModsDir
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}

	var err error
	if c.Paths.ModsDir, err = expandPath(c.Paths.ModsDir); err != nil {
		return fmt.Errorf("paths.mods_dir: %w", err)
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGame() error {
	if c.Game.ExePath == "" {
		if value, ok := os.LookupEnv("FURYMOD_GAME_EXE"); ok {
			c.Game.ExePath = value
		}
	}
	// Paths pasted from a file manager often arrive quoted.
	c.Game.ExePath = strings.Trim(strings.TrimSpace(c.Game.ExePath), `"`)
	c.Game.VanillaExePath = strings.Trim(strings.TrimSpace(c.Game.VanillaExePath), `"`)

	var err error
	if c.Game.ExePath, err = expandPath(c.Game.ExePath); err != nil {
		return fmt.Errorf("game.exe_path: %w", err)
	}
	if c.Game.VanillaExePath, err = expandPath(c.Game.VanillaExePath); err != nil {
		return fmt.Errorf("game.vanilla_exe_path: %w", err)
	}

	subdir := strings.TrimSpace(c.Game.AssetsSubdir)
	if subdir == "" {
		subdir = defaultAssetsSubdir
	}
	subdir = strings.ReplaceAll(subdir, `\`, "/")
	c.Game.AssetsSubdir = filepath.Clean(filepath.FromSlash(subdir))
	return nil
}

func (c *Config) normalizeSounds() {
	c.Sounds.FFmpegBinary = strings.TrimSpace(c.Sounds.FFmpegBinary)
	if c.Sounds.FFmpegBinary == "" {
		c.Sounds.FFmpegBinary = defaultFFmpegBinary
	}
	c.Sounds.OpusencBinary = strings.TrimSpace(c.Sounds.OpusencBinary)
	if c.Sounds.OpusencBinary == "" {
		c.Sounds.OpusencBinary = defaultOpusencBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
