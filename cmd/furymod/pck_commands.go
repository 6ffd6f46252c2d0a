package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"

	"furymod/internal/fileutil"
	"furymod/internal/pck"
	"furymod/internal/textutil"
)

func newPckCommand() *cobra.Command {
	pckCmd := &cobra.Command{
		Use:         "pck",
		Short:       "Inspect and repack sound archives",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	pckCmd.AddCommand(newPckListCommand())
	pckCmd.AddCommand(newPckExtractCommand())
	pckCmd.AddCommand(newPckReplaceCommand())
	return pckCmd
}

type pckEntryJSON struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Key    string `json:"key"`
	Size   int    `json:"size"`
	Digest string `json:"digest"`
}

func newPckListCommand() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list <archive.pck>",
		Short: "List the entries of a sound archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := pck.Load(args[0])
			if err != nil {
				return err
			}
			entries := archive.Entries()
			if jsonOutput {
				views := make([]pckEntryJSON, 0, len(entries))
				for i, e := range entries {
					views = append(views, pckEntryJSON{
						Index:  i,
						Name:   e.Name,
						Key:    e.Key(),
						Size:   len(e.Data),
						Digest: digest.FromBytes(e.Data).String(),
					})
				}
				return writeJSON(cmd, views)
			}

			rows := make([][]string, 0, len(entries))
			var total uint64
			for i, e := range entries {
				total += uint64(len(e.Data))
				rows = append(rows, []string{strconv.Itoa(i), e.Name, humanize.IBytes(uint64(len(e.Data)))})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(entryColumns, rows))
			fmt.Fprintf(out, "%d entries, %s of payload\n", len(entries), humanize.IBytes(total))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")
	return cmd
}

func newPckExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <archive.pck> <dir>",
		Short: "Write every archive entry to a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := pck.Load(args[0])
			if err != nil {
				return err
			}
			dir := args[1]
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			used := make(map[string]struct{})
			for i, e := range archive.Entries() {
				base := textutil.SanitizeFileName(e.Name, fmt.Sprintf("entry%04d%s", i, pck.SniffExtension(e.Data)))
				name := uniqueName(used, base)
				if err := fileutil.WriteFileAtomic(filepath.Join(dir, name), e.Data, 0o644); err != nil {
					return fmt.Errorf("write entry %d: %w", i, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d entries to %s\n", archive.Len(), dir)
			return nil
		},
	}
}

// uniqueName returns base, or base with a numeric suffix before the
// extension, so that no two extracted entries share a file name. Names are
// compared case-insensitively for Windows and macOS file systems.
func uniqueName(used map[string]struct{}, base string) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := base
	for n := 1; ; n++ {
		if _, taken := used[strings.ToLower(name)]; !taken {
			break
		}
		name = fmt.Sprintf("%s.%d%s", stem, n, ext)
	}
	used[strings.ToLower(name)] = struct{}{}
	return name
}

func newPckReplaceCommand() *cobra.Command {
	var ext string
	var output string
	cmd := &cobra.Command{
		Use:   "replace <archive.pck> <entry> <payload-file>",
		Short: "Replace one archive entry with an already encoded payload",
		Long: "Replace the first entry whose name matches <entry> (directory and extension\n" +
			"ignored) with the bytes of <payload-file>. The archive is rewritten atomically.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := pck.Load(args[0])
			if err != nil {
				return err
			}
			idx, err := archive.Find(args[1])
			if err != nil {
				keys := make([]string, 0, archive.Len())
				for _, e := range archive.Entries() {
					keys = append(keys, e.Key())
				}
				if hint, _, ok := textutil.Closest(pck.Key(args[1]), keys, 0.6); ok {
					return fmt.Errorf("%w (did you mean %q?)", err, hint)
				}
				return err
			}
			payload, err := os.ReadFile(args[2])
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}
			if err := archive.Replace(idx, payload, ext); err != nil {
				return err
			}
			target := args[0]
			if output != "" {
				target = output
			}
			if err := archive.Write(target); err != nil {
				return err
			}
			entry, _ := archive.Entry(idx)
			fmt.Fprintf(cmd.OutOrStdout(), "Replaced entry %d (%s) with %s in %s\n", idx, entry.Name, humanize.IBytes(uint64(len(payload))), target)
			return nil
		},
	}
	cmd.Flags().StringVar(&ext, "ext", "", "New extension for the entry name (for example opus)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the archive here instead of in place")
	return cmd
}
