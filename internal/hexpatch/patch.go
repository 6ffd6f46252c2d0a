package hexpatch

import (
	"fmt"
	"path"
	"path/filepath"
)

// Source identifies where a patch was defined.
type Source struct {
	Folder string // mod Hex folder
	File   string // definition file, relative to Folder
	Line   int    // 1-based line, or IPS record number
}

// String renders "<mod>/<folder>/<file>[:line]" with forward slashes on
// every platform.
func (s Source) String() string {
	name := path.Join(filepath.Base(filepath.Dir(s.Folder)), filepath.Base(s.Folder), filepath.ToSlash(s.File))
	if s.Line > 0 {
		return fmt.Sprintf("%s:%d", name, s.Line)
	}
	return name
}

// Patch is one edit: write Bytes at Offset, optionally only when Expected is
// currently there. When Region is set, Offset is relative to the start of
// that PE section's raw data.
type Patch struct {
	Region   string
	Offset   int64
	Bytes    []byte
	Expected []byte
	Source   Source
}

// Target renders the patch address as written in definition files.
func (p Patch) Target() string {
	if p.Region != "" {
		return fmt.Sprintf("%s+0x%X", p.Region, p.Offset)
	}
	return fmt.Sprintf("0x%X", p.Offset)
}

// Set is an ordered list of patches.
type Set []Patch

// Overlap records a later patch overwriting bytes an earlier one wrote.
type Overlap struct {
	Earlier Source
	Later   Source
	Offset  int64 // absolute image offset where the overlap starts
	Length  int
}

func (o Overlap) String() string {
	return fmt.Sprintf("%s overwrites %d bytes of %s at 0x%X", o.Later, o.Length, o.Earlier, o.Offset)
}
