// Package hexpatch loads byte-level executable edits from mod folders and
// applies them to an image.
//
// Definitions come in two formats. Text files (*.hex, *.txt) hold one edit
// per line:
//
//	# comment
//	0x1A2B3C  90 90 90        | 74 05 E8
//	.text+0x40 EB10
//
// The first field is an absolute offset (0x-prefixed hex or decimal) or a PE
// section name plus an offset into that section. The optional part after "|"
// lists the bytes that must be present before the edit is written. IPS files
// (*.ips) are read as standard IPS patches, one edit per record.
//
// Edits are applied strictly in set order. A later edit that overlaps an
// earlier one wins; the overlap is reported but never blocks.
package hexpatch
