package services

import (
	"fmt"
	"strings"
)

// NoOffset marks a diagnostic that does not refer to a byte position.
const NoOffset int64 = -1

// Diagnostic records one skipped item. Key identifies the item (entry name,
// asset path, patch line), Source names the mod folder or file that supplied
// it, and Offset is the image/archive position involved, or NoOffset.
type Diagnostic struct {
	Stage  string
	Key    string
	Source string
	Offset int64
	Err    error
}

// Kind returns the taxonomy name of the underlying error.
func (d Diagnostic) Kind() string {
	return Kind(d.Err)
}

func (d Diagnostic) String() string {
	var b strings.Builder
	if d.Stage != "" {
		b.WriteString(d.Stage)
		b.WriteString(": ")
	}
	b.WriteString(d.Kind())
	if d.Key != "" {
		fmt.Fprintf(&b, " key=%q", d.Key)
	}
	if d.Source != "" {
		fmt.Fprintf(&b, " source=%q", d.Source)
	}
	if d.Offset >= 0 {
		fmt.Fprintf(&b, " offset=0x%X", d.Offset)
	}
	if d.Err != nil {
		b.WriteString(": ")
		b.WriteString(d.Err.Error())
	}
	return b.String()
}

// Diagnostics is an ordered list of skipped items.
type Diagnostics []Diagnostic

// Add appends a diagnostic.
func (d *Diagnostics) Add(diag Diagnostic) {
	*d = append(*d, diag)
}

// CountKind returns how many diagnostics carry the given taxonomy kind.
func (d Diagnostics) CountKind(kind string) int {
	n := 0
	for _, diag := range d {
		if diag.Kind() == kind {
			n++
		}
	}
	return n
}
