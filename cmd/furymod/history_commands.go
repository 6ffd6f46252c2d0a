package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"furymod/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded install runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No installs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.RunID,
					string(r.Status),
					formatTime(r.StartedAt),
					formatDuration(r.Duration()),
					strconv.Itoa(r.Assets),
					strconv.Itoa(r.Sounds),
					strconv.Itoa(r.HexEdits),
					strconv.Itoa(r.Videos),
					strconv.Itoa(r.Diagnostics),
				})
			}
			fmt.Fprintln(out, renderTable(runColumns, rows))
			return nil
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	historyCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")

	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var skippedOnly bool
	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show the items of one install run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()

			var run *ledger.Run
			if len(args) == 1 {
				run, err = store.GetRun(cmd.Context(), args[0])
			} else {
				run, err = store.LatestRun(cmd.Context())
			}
			if err != nil {
				return err
			}
			if run == nil {
				return errors.New("install run not found")
			}
			items, err := store.Items(cmd.Context(), run.RunID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s: %s, started %s\n", run.RunID, run.Status, formatTime(run.StartedAt))
			if run.Error != "" {
				fmt.Fprintf(out, "Error: %s\n", run.Error)
			}
			if run.ExeDigest != "" {
				fmt.Fprintf(out, "Game executable: %s\n", run.ExeDigest)
			}
			rows := make([][]string, 0, len(items))
			for _, it := range items {
				if skippedOnly && it.Outcome != ledger.OutcomeSkipped {
					continue
				}
				offset := ""
				if it.Offset >= 0 {
					offset = fmt.Sprintf("0x%X", it.Offset)
				}
				rows = append(rows, []string{it.Category, it.Mod, it.Key, string(it.Outcome), it.Kind, offset, it.Detail})
			}
			fmt.Fprintln(out, renderTable(itemColumns, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&skippedOnly, "skipped", false, "Show only skipped items")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the most recent install runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 0 {
				return errors.New("--keep must not be negative")
			}
			store, err := ctx.openLedger()
			if err != nil {
				return err
			}
			defer store.Close()
			removed, err := store.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 20, "Number of runs to keep")
	return cmd
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", t.Local().Format("2006-01-02 15:04"), humanize.Time(t))
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(10 * time.Millisecond).String()
}
