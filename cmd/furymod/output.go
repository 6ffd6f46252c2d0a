package main

import (
	"encoding/json"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// column describes one table column. Counts and offsets are right aligned;
// free-text columns with a width wrap at word boundaries.
type column struct {
	title string
	right bool
	width int
}

var (
	entryColumns = []column{
		{title: "#", right: true},
		{title: "Name"},
		{title: "Size", right: true},
	}
	summaryColumns = []column{
		{title: "Category"},
		{title: "Count", right: true},
	}
	diagnosticColumns = []column{
		{title: "Kind"},
		{title: "Key"},
		{title: "Source"},
		{title: "Offset", right: true},
		{title: "Detail", width: 60},
	}
	runColumns = []column{
		{title: "Run"},
		{title: "Status"},
		{title: "Started"},
		{title: "Took", right: true},
		{title: "Assets", right: true},
		{title: "Sounds", right: true},
		{title: "Hex", right: true},
		{title: "Videos", right: true},
		{title: "Skipped", right: true},
	}
	itemColumns = []column{
		{title: "Category"},
		{title: "Mod"},
		{title: "Key"},
		{title: "Outcome"},
		{title: "Kind"},
		{title: "Offset", right: true},
		{title: "Detail", width: 50},
	}
)

func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.title
		cfg := table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if c.right {
			cfg.Align = text.AlignRight
		}
		if c.width > 0 {
			cfg.WidthMax = c.width
			cfg.WidthMaxEnforcer = text.WrapSoft
		}
		configs[i] = cfg
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

// writeJSON prints v as indented JSON. Paths and error text are written
// without HTML escaping.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
