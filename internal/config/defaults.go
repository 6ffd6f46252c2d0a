package config

const (
	defaultModsDir          = "Mods"
	defaultWorkDir          = "~/.local/share/furymod/work"
	defaultStateDir         = "~/.local/share/furymod"
	defaultLogDir           = "~/.local/share/furymod/logs"
	defaultAssetsSubdir     = "GameData/app"
	defaultFFmpegBinary     = "ffmpeg"
	defaultOpusencBinary    = "opusenc"
	defaultEncodeTimeout    = 120
	defaultVideoTimeout     = 1800
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ModsDir:  defaultModsDir,
			WorkDir:  defaultWorkDir,
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Game: Game{
			AssetsSubdir: defaultAssetsSubdir,
		},
		Sounds: Sounds{
			FFmpegBinary:  defaultFFmpegBinary,
			OpusencBinary: defaultOpusencBinary,
			EncodeTimeout: defaultEncodeTimeout,
		},
		Video: Video{
			EncodeTimeout: defaultVideoTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
