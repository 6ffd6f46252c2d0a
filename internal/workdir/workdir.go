// Package workdir manages the scratch files an install leaves in the work
// directory: per-item encoder directories and the staged executable copy.
// A crash can leave them behind; the installer removes them once it holds the
// install lock, since no other run can own them at that point.
package workdir

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"furymod/internal/logging"
)

// Prefixes of the entries an install creates in the work directory.
const (
	EncodePrefix = "encode-"
	VideoPrefix  = "video-"
	ExePrefix    = "exe-"
)

// CleanResult contains the outcome of a leftover cleanup.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// IsScratch reports whether name is an entry an install creates.
func IsScratch(name string) bool {
	for _, prefix := range []string{EncodePrefix, VideoPrefix, ExePrefix} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// CleanLeftovers removes scratch entries from workDir. Unrelated files are
// left alone. Callers must hold the install lock.
func CleanLeftovers(workDir string, logger *slog.Logger) CleanResult {
	result := CleanResult{}
	if logger == nil {
		logger = logging.NewNop()
	}

	workDir = strings.TrimSpace(workDir)
	if workDir == "" {
		return result
	}
	entries, err := os.ReadDir(workDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: workDir, Error: err})
		}
		return result
	}

	for _, entry := range entries {
		if !IsScratch(entry.Name()) {
			continue
		}
		path := filepath.Join(workDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logger.Warn("failed to remove leftover work file",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "workdir_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "check work_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Info("removed leftover work file",
			logging.String("path", path),
			logging.String(logging.FieldEventType, "workdir_cleanup"),
		)
	}
	return result
}

// Usage returns the number of scratch entries in workDir and their total
// size in bytes.
func Usage(workDir string) (int, int64, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	count := 0
	var size int64
	for _, entry := range entries {
		if !IsScratch(entry.Name()) {
			continue
		}
		count++
		n, _ := entrySize(filepath.Join(workDir, entry.Name()))
		size += n
	}
	return count, size, nil
}

func entrySize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best effort
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
