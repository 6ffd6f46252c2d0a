package preflight

import (
	"fmt"
	"strings"

	"furymod/internal/config"
	"furymod/internal/modscan"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// Needs lists the mod categories an install will process that depend on
// external tools.
type Needs []modscan.Category

// NeedsFor returns the tool-dependent categories present in scan.
func NeedsFor(scan modscan.Result) Needs {
	var needs Needs
	for _, c := range []modscan.Category{modscan.Sounds, modscan.Video} {
		if len(scan.Folders(c)) > 0 {
			needs = append(needs, c)
		}
	}
	return needs
}

func (n Needs) names() []string {
	out := make([]string, len(n))
	for i, c := range n {
		out[i] = string(c)
	}
	return out
}

// RunAll executes all applicable preflight checks for the given config.
// External tools are only checked when a category in needs uses them.
func RunAll(cfg *config.Config, needs Needs) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Mods directory", cfg.Paths.ModsDir))
	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckFileWritable("Game executable", cfg.Game.ExePath))

	if len(needs) == 0 {
		return results
	}
	for _, status := range CheckSystemDeps(cfg) {
		if !status.NeededBy(needs.names()...) {
			continue
		}
		r := Result{Name: status.Name, Passed: status.Available, Detail: status.Command}
		if !status.Available {
			r.Detail = fmt.Sprintf("%s (required for %s mods)", status.Detail, strings.Join(status.UsedBy, "/"))
		}
		results = append(results, r)
	}
	return results
}
