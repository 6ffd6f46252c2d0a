package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"furymod/internal/install"
	"furymod/internal/modscan"
	"furymod/internal/preflight"
	"furymod/internal/services"
)

func newInstallCommand(ctx *commandContext) *cobra.Command {
	var requireExpected bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install every mod under the mods folder into the game",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if requireExpected {
				cfg.Hex.RequireExpected = true
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			var needs preflight.Needs
			if scan, err := modscan.Scan(cfg.Paths.ModsDir); err == nil {
				needs = preflight.NeedsFor(scan)
			}
			if failed := preflight.Failed(preflight.RunAll(cfg, needs)); len(failed) > 0 {
				out := cmd.ErrOrStderr()
				lines := make([]statusLine, 0, len(failed))
				for _, check := range failed {
					lines = append(lines, checkLine(check))
				}
				fmt.Fprintln(out, strings.Join(renderLines(lines, shouldColorize(out)), "\n"))
				return fmt.Errorf("preflight failed: %d checks did not pass", len(failed))
			}

			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			inst, err := install.New(cfg, install.WithRecorder(store), install.WithLogger(logger))
			if err != nil {
				return err
			}
			report, runErr := inst.Run(cmd.Context())
			if errors.Is(runErr, install.ErrLocked) {
				return fmt.Errorf("%w (lock file %s)", runErr, cfg.LockPath())
			}
			if report != nil {
				if jsonOutput {
					if err := writeJSON(cmd, reportView(report)); err != nil {
						return err
					}
				} else {
					printReport(cmd.OutOrStdout(), report)
				}
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&requireExpected, "require-expected", false, "Skip hex edits that do not declare expected bytes")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the install report as JSON")
	return cmd
}

type installReportJSON struct {
	RunID           string           `json:"run_id"`
	Mods            int              `json:"mods"`
	Assets          int              `json:"assets"`
	Sounds          int              `json:"sounds"`
	HexEdits        int              `json:"hex_edits"`
	Videos          int              `json:"videos"`
	ArchivesWritten int              `json:"archives_written"`
	Overlaps        int              `json:"overlaps"`
	ExeDigest       string           `json:"exe_digest,omitempty"`
	Diagnostics     []diagnosticJSON `json:"diagnostics"`
}

type diagnosticJSON struct {
	Stage  string `json:"stage"`
	Kind   string `json:"kind"`
	Key    string `json:"key"`
	Source string `json:"source,omitempty"`
	Offset *int64 `json:"offset,omitempty"`
	Error  string `json:"error"`
}

func reportView(r *install.Report) installReportJSON {
	view := installReportJSON{
		RunID:           r.RunID,
		Mods:            r.Mods,
		Assets:          r.Assets,
		Sounds:          r.Sounds,
		HexEdits:        r.HexEdits,
		Videos:          r.Videos,
		ArchivesWritten: r.ArchivesWritten,
		Overlaps:        len(r.Overlaps),
		ExeDigest:       r.ExeDigest.String(),
		Diagnostics:     diagnosticViews(r.Diagnostics),
	}
	return view
}

func diagnosticViews(diags services.Diagnostics) []diagnosticJSON {
	out := make([]diagnosticJSON, 0, len(diags))
	for _, d := range diags {
		view := diagnosticJSON{Stage: d.Stage, Kind: d.Kind(), Key: d.Key, Source: d.Source}
		if d.Offset != services.NoOffset {
			offset := d.Offset
			view.Offset = &offset
		}
		if d.Err != nil {
			view.Error = d.Err.Error()
		}
		out = append(out, view)
	}
	return out
}

func printReport(out io.Writer, r *install.Report) {
	rows := [][]string{
		{"Assets", strconv.Itoa(r.Assets)},
		{"Sounds", strconv.Itoa(r.Sounds)},
		{"Hex edits", strconv.Itoa(r.HexEdits)},
		{"Videos", strconv.Itoa(r.Videos)},
		{"Archives written", strconv.Itoa(r.ArchivesWritten)},
		{"Skipped", strconv.Itoa(len(r.Diagnostics))},
	}
	if r.CodeFolders > 0 {
		rows = append(rows, []string{"Not installed (Codes)", strconv.Itoa(r.CodeFolders)})
	}
	fmt.Fprintf(out, "Install %s: %d mods scanned\n", r.RunID, r.Mods)
	fmt.Fprintln(out, renderTable(summaryColumns, rows))
	if r.ExeDigest != "" {
		fmt.Fprintf(out, "Game executable: %s\n", r.ExeDigest)
	}
	for _, o := range r.Overlaps {
		fmt.Fprintf(out, "Overlap: %s\n", o.String())
	}
	if len(r.Diagnostics) > 0 {
		fmt.Fprintln(out, renderDiagnostics(r.Diagnostics))
	}
}

func renderDiagnostics(diags services.Diagnostics) string {
	rows := make([][]string, 0, len(diags))
	for _, d := range diags {
		offset := ""
		if d.Offset != services.NoOffset {
			offset = fmt.Sprintf("0x%X", d.Offset)
		}
		detail := ""
		if d.Err != nil {
			detail = d.Err.Error()
		}
		rows = append(rows, []string{d.Kind(), d.Key, d.Source, offset, detail})
	}
	return renderTable(diagnosticColumns, rows)
}

