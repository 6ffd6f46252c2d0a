package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

func (k statusKind) String() string {
	switch k {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (k statusKind) colors() text.Colors {
	switch k {
	case statusOK:
		return text.Colors{text.FgGreen}
	case statusWarn:
		return text.Colors{text.FgYellow}
	case statusError:
		return text.Colors{text.FgRed, text.Bold}
	default:
		return text.Colors{text.FgBlue}
	}
}

// statusLine renders as "label: [KIND] message".
type statusLine struct {
	label   string
	kind    statusKind
	message string
}

type statusSection struct {
	title string
	lines []statusLine
}

const statusIndent = "  "

// renderLines aligns every message on the longest label.
func renderLines(lines []statusLine, colorize bool) []string {
	width := 0
	for _, l := range lines {
		width = max(width, len(l.label)+1)
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		badge := "[" + l.kind.String() + "]"
		if l.message != "" {
			badge += " " + l.message
		}
		row := fmt.Sprintf("%s%-*s %s", statusIndent, width, l.label+":", badge)
		if colorize {
			row = paint(l.kind.colors(), row)
		}
		out = append(out, row)
	}
	return out
}

// renderStatus prints each section under a "== title ==" header, with labels
// aligned across all sections.
func renderStatus(sections []statusSection, colorize bool) string {
	var all []statusLine
	for _, s := range sections {
		all = append(all, s.lines...)
	}
	rendered := renderLines(all, colorize)

	var b strings.Builder
	next := 0
	for i, s := range sections {
		if i > 0 {
			b.WriteByte('\n')
		}
		header := "== " + strings.TrimSpace(s.title) + " =="
		if colorize {
			header = paint(text.Colors{text.FgBlue, text.Bold}, header)
		}
		b.WriteString(header)
		b.WriteByte('\n')
		for range s.lines {
			b.WriteString(rendered[next])
			b.WriteByte('\n')
			next++
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// paint wraps s in the escape sequence of c. Whether to color is decided by
// the caller from the output's terminal state.
func paint(c text.Colors, s string) string {
	return c.EscapeSeq() + s + text.Reset.EscapeSeq()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
