package preflight

import (
	"fmt"
	"os"

	"furymod/internal/config"
	"furymod/internal/deps"
	"furymod/internal/modscan"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := dirAccess(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFileWritable verifies that a file exists and can be replaced in place.
func CheckFileWritable(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := fileAccess(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps resolves every external encoder named by cfg. The install
// preflight and the status command share this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	sounds, video := string(modscan.Sounds), string(modscan.Video)
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Sounds.FFmpegBinary,
			Description: "Converts mod sounds to WAV and re-encodes cutscenes",
			UsedBy:      []string{sounds, video},
		},
		{
			Name:        "opusenc",
			Command:     cfg.Sounds.OpusencBinary,
			Description: "Encodes replacement sounds for the game archives",
			Beside:      cfg.Sounds.FFmpegBinary,
			UsedBy:      []string{sounds},
		},
	})
}
