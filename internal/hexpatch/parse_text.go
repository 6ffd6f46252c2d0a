package hexpatch

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"furymod/internal/services"
)

// parseText reads the line-oriented definition format. Malformed lines are
// reported and skipped.
func parseText(r io.Reader, src Source) (Set, services.Diagnostics, error) {
	var (
		set   Set
		diags services.Diagnostics
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		lineSrc := src
		lineSrc.Line = line
		patch, err := parseLine(text)
		if err != nil {
			diags.Add(services.Diagnostic{
				Stage:  "hexpatch",
				Key:    text,
				Source: lineSrc.String(),
				Offset: services.NoOffset,
				Err:    err,
			})
			continue
		}
		patch.Source = lineSrc
		set = append(set, patch)
	}
	if err := scanner.Err(); err != nil {
		return set, diags, err
	}
	return set, diags, nil
}

func parseLine(text string) (Patch, error) {
	body, expectedText, hasExpected := strings.Cut(text, "|")
	fields := strings.Fields(body)
	if len(fields) < 2 {
		return Patch{}, malformed("expected \"<offset> <bytes>\"")
	}

	var p Patch
	var err error
	p.Region, p.Offset, err = parseAddress(fields[0])
	if err != nil {
		return Patch{}, err
	}
	if p.Bytes, err = parseHexBytes(fields[1:]); err != nil {
		return Patch{}, err
	}
	if hasExpected {
		if p.Expected, err = parseHexBytes(strings.Fields(expectedText)); err != nil {
			return Patch{}, err
		}
		if len(p.Expected) != len(p.Bytes) {
			return Patch{}, malformed(fmt.Sprintf("expected bytes length %d differs from patch length %d", len(p.Expected), len(p.Bytes)))
		}
	}
	return p, nil
}

// parseAddress accepts "0x1F", "31" or "<section>+<offset>".
func parseAddress(s string) (string, int64, error) {
	region := ""
	if i := strings.LastIndexByte(s, '+'); i >= 0 {
		region, s = s[:i], s[i+1:]
		if region == "" {
			return "", 0, malformed("empty section name")
		}
	}
	off, err := parseOffset(s)
	if err != nil {
		return "", 0, err
	}
	return region, off, nil
}

func parseOffset(s string) (int64, error) {
	base := 10
	digits := s
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		base, digits = 16, rest
	}
	v, err := strconv.ParseInt(strings.ReplaceAll(digits, "_", ""), base, 64)
	if err != nil || v < 0 {
		return 0, malformed(fmt.Sprintf("invalid offset %q", s))
	}
	return v, nil
}

// parseHexBytes decodes byte fields such as "90 90", "9090" or "0x90 0x90".
func parseHexBytes(fields []string) ([]byte, error) {
	var sb strings.Builder
	for _, f := range fields {
		if rest, ok := strings.CutPrefix(strings.ToLower(f), "0x"); ok {
			f = rest
		}
		sb.WriteString(f)
	}
	s := sb.String()
	if s == "" {
		return nil, malformed("no bytes")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, malformed(fmt.Sprintf("invalid hex %q", s))
	}
	return b, nil
}

func malformed(msg string) error {
	return services.Wrap(services.ErrMalformedPatch, "hexpatch", "parse", msg, nil)
}
