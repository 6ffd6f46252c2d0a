// Package deps resolves the external encoders furymod hands work to.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Requirement describes an external tool and the mod categories that need it.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Beside names another command whose directory is searched first when
	// Command is a bare name. Static audio bundles ship opusenc next to
	// ffmpeg rather than on PATH.
	Beside string
	// UsedBy lists the mod categories that cannot install without the tool.
	UsedBy []string
}

// Status reports where a requirement resolved. Command is the absolute path
// when the tool was found and the configured command otherwise.
type Status struct {
	Name        string
	Command     string
	Description string
	UsedBy      []string
	Available   bool
	Detail      string
}

// CheckBinaries resolves every requirement in order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, resolve(req))
	}
	return results
}

// NeededBy reports whether any of the given categories uses the tool.
func (s Status) NeededBy(categories ...string) bool {
	for _, c := range categories {
		for _, u := range s.UsedBy {
			if strings.EqualFold(c, u) {
				return true
			}
		}
	}
	return false
}

func resolve(req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		UsedBy:      req.UsedBy,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}

	if beside := strings.TrimSpace(req.Beside); beside != "" && !strings.ContainsRune(cmd, os.PathSeparator) {
		if anchor, err := exec.LookPath(beside); err == nil {
			candidate := filepath.Join(filepath.Dir(anchor), executableName(cmd))
			if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
				status.Command = candidate
				status.Available = true
				status.Detail = "found next to " + filepath.Base(anchor)
				return status
			}
		}
	}

	path, err := exec.LookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	status.Command = path
	status.Available = true
	return status
}

func executableName(base string) string {
	if runtime.GOOS == "windows" && filepath.Ext(base) == "" {
		return base + ".exe"
	}
	return base
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
