package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"furymod/internal/config"
	"furymod/internal/deps"
	"furymod/internal/ledger"
	"furymod/internal/modscan"
	"furymod/internal/preflight"
	"furymod/internal/workdir"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show game, mods, tool and last install status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			sections := []statusSection{
				{title: "Game", lines: gameLines(cfg)},
				{title: "Mods", lines: modLines(cfg.Paths.ModsDir)},
				{title: "Directories", lines: directoryLines(cfg)},
				{title: "Encoders", lines: dependencyLines(preflight.CheckSystemDeps(cfg))},
				{title: "Last install", lines: lastRunLines(cmd.Context(), ctx)},
			}
			fmt.Fprintln(out, renderStatus(sections, shouldColorize(out)))
			return nil
		},
	}
}

func gameLines(cfg *config.Config) []statusLine {
	game := preflight.InspectGame(cfg)
	exeKind := statusOK
	if !game.Found || !game.IsPE {
		exeKind = statusError
	}
	lines := []statusLine{{"Executable", exeKind, game.ExeDetail()}}
	if cfg.Game.VanillaExePath != "" {
		lines = append(lines, statusLine{"Vanilla copy", statusInfo, cfg.Game.VanillaExePath})
	}
	archiveKind := statusOK
	if game.Archives == 0 {
		archiveKind = statusWarn
	}
	return append(lines, statusLine{"Sound archives", archiveKind, fmt.Sprintf("%d in %s", game.Archives, game.AssetsDir)})
}

func directoryLines(cfg *config.Config) []statusLine {
	var lines []statusLine
	for _, check := range []preflight.Result{
		preflight.CheckDirectoryAccess("Work", cfg.Paths.WorkDir),
		preflight.CheckDirectoryAccess("State", cfg.Paths.StateDir),
		preflight.CheckDirectoryAccess("Logs", cfg.Paths.LogDir),
	} {
		lines = append(lines, checkLine(check))
	}
	if count, size, err := workdir.Usage(cfg.Paths.WorkDir); err == nil && count > 0 {
		lines = append(lines, statusLine{"Leftovers", statusWarn,
			fmt.Sprintf("%d entries, %s (removed on next install)", count, humanize.IBytes(uint64(size)))})
	}
	return lines
}

func checkLine(check preflight.Result) statusLine {
	kind := statusOK
	if !check.Passed {
		kind = statusError
	}
	return statusLine{check.Name, kind, check.Detail}
}

func modLines(modsDir string) []statusLine {
	scan, err := modscan.Scan(modsDir)
	if err != nil {
		return []statusLine{{"Mods folder", statusError, err.Error()}}
	}
	lines := []statusLine{{"Mods folder", statusOK, fmt.Sprintf("%s (%d mods)", modsDir, len(scan.Mods))}}
	for _, d := range scan.Diagnostics {
		lines = append(lines, statusLine{d.Key, statusError, "unreadable, skipped on install"})
	}
	for _, c := range modscan.Categories {
		n := len(scan.Folders(c))
		if n == 0 {
			continue
		}
		kind := statusInfo
		message := fmt.Sprintf("%d folders", n)
		if c == modscan.Codes {
			kind = statusWarn
			message += " (not installed)"
		}
		lines = append(lines, statusLine{string(c), kind, message})
	}
	return lines
}

func dependencyLines(statuses []deps.Status) []statusLine {
	lines := make([]statusLine, 0, len(statuses)+1)
	var missing, blocked []string
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, statusLine{dep.Name, statusOK, message})
			continue
		}
		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		lines = append(lines, statusLine{dep.Name, statusError, detail})
		missing = append(missing, dep.Name)
		for _, c := range dep.UsedBy {
			if !containsFold(blocked, c) {
				blocked = append(blocked, c)
			}
		}
	}
	if len(missing) > 0 {
		message := strings.Join(missing, ", ")
		if len(blocked) > 0 {
			message += fmt.Sprintf(" (needed for %s mods)", strings.Join(blocked, ", "))
		}
		lines = append(lines, statusLine{"Missing tools", statusWarn, message})
	}
	return lines
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func lastRunLines(ctx context.Context, cmdCtx *commandContext) []statusLine {
	store, err := cmdCtx.openLedger()
	if err != nil {
		return []statusLine{{"Ledger", statusError, err.Error()}}
	}
	defer store.Close()

	run, err := store.LatestRun(ctx)
	if err != nil {
		return []statusLine{{"Ledger", statusError, err.Error()}}
	}
	if run == nil {
		return []statusLine{{"Result", statusInfo, "No installs recorded"}}
	}
	return []statusLine{
		{"Result", runStatusKind(run.Status), string(run.Status)},
		{"Started", statusInfo, formatTime(run.StartedAt)},
		{"Changes", statusInfo, fmt.Sprintf("%d assets, %d sounds, %d hex edits, %d videos, %d skipped",
			run.Assets, run.Sounds, run.HexEdits, run.Videos, run.Diagnostics)},
	}
}

func runStatusKind(status ledger.RunStatus) statusKind {
	switch status {
	case ledger.RunSucceeded:
		return statusOK
	case ledger.RunPartial, ledger.RunRunning:
		return statusWarn
	case ledger.RunFailed:
		return statusError
	default:
		return statusInfo
	}
}
