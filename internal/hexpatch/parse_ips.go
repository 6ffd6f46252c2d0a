package hexpatch

import (
	"bytes"
	"fmt"

	"furymod/internal/services"
)

const (
	ipsHeader  = "PATCH"
	ipsTrailer = "EOF"
)

// parseIPS decodes an IPS patch. Each record becomes one patch with Line set
// to its 1-based record number. A truncated record ends parsing; records read
// before it are kept.
func parseIPS(data []byte, src Source) (Set, services.Diagnostics) {
	var (
		set   Set
		diags services.Diagnostics
	)
	report := func(record int, off int64, msg string) {
		s := src
		s.Line = record
		diags.Add(services.Diagnostic{
			Stage:  "hexpatch",
			Key:    src.File,
			Source: s.String(),
			Offset: off,
			Err:    malformed(msg),
		})
	}

	if !bytes.HasPrefix(data, []byte(ipsHeader)) {
		report(0, services.NoOffset, "missing PATCH header")
		return nil, diags
	}

	pos := len(ipsHeader)
	for record := 1; ; record++ {
		rest := data[pos:]
		if bytes.HasPrefix(rest, []byte(ipsTrailer)) && (len(rest) == 3 || len(rest) == 6) {
			return set, diags
		}
		if len(rest) < 5 {
			report(record, services.NoOffset, "missing EOF trailer")
			return set, diags
		}
		offset := int64(rest[0])<<16 | int64(rest[1])<<8 | int64(rest[2])
		size := int(rest[3])<<8 | int(rest[4])
		rest = rest[5:]
		pos += 5

		var payload []byte
		if size == 0 {
			if len(rest) < 3 {
				report(record, offset, "truncated RLE record")
				return set, diags
			}
			count := int(rest[0])<<8 | int(rest[1])
			if count == 0 {
				report(record, offset, "empty RLE record")
				pos += 3
				continue
			}
			payload = bytes.Repeat([]byte{rest[2]}, count)
			pos += 3
		} else {
			if len(rest) < size {
				report(record, offset, fmt.Sprintf("record wants %d bytes, %d left", size, len(rest)))
				return set, diags
			}
			payload = append([]byte(nil), rest[:size]...)
			pos += size
		}

		s := src
		s.Line = record
		set = append(set, Patch{Offset: offset, Bytes: payload, Source: s})
	}
}
