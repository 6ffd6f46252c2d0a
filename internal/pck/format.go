package pck

import (
	"encoding/binary"
	"fmt"
	"io"

	"furymod/internal/services"
)

// Section magics, both eight bytes wide.
const (
	filenameMagic = "Filename"
	packMagic     = "Pack    "
)

const (
	sectionAlign       = 16
	filenameHeaderSize = 12 // magic + section size
	packHeaderSize     = 16 // magic + section size + entry count
	nameOffsetSize     = 4
	indexEntrySize     = 8 // offset + size
	maxArchiveSize     = 1<<32 - 1
)

var le = binary.LittleEndian

// indexEntry is one decoded row of the Pack section.
type indexEntry struct {
	NameOffset uint32
	Offset     uint32
	Size       uint32
}

// layout describes where each section of an archive lives.
type layout struct {
	FilenameSize uint32 // S: bytes from file start to the Pack magic
	PackSize     uint32 // P: bytes from S to the first payload byte
	Entries      []indexEntry
}

// DataStart is the first byte after the index.
func (l layout) DataStart() int64 {
	return int64(l.FilenameSize) + int64(l.PackSize)
}

func alignUp(n int64) int64 {
	return (n + sectionAlign - 1) &^ (sectionAlign - 1)
}

func corrupt(format string, args ...any) error {
	return services.Wrap(services.ErrCorruptArchive, "pck", "decode", fmt.Sprintf(format, args...), nil)
}

// readFull reads len(buf) bytes at off. Short reads are reported as a
// corrupt archive since every read is preceded by a bounds check against size.
func readFull(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
		return corrupt("short read at 0x%X: got %d of %d bytes", off, n, len(buf))
	}
	return services.Wrap(services.ErrIO, "pck", "read", fmt.Sprintf("at 0x%X", off), err)
}

// readLayout validates the header and index of an archive of the given size.
func readLayout(r io.ReaderAt, size int64) (layout, error) {
	var l layout
	if size < filenameHeaderSize+packHeaderSize {
		return l, corrupt("file too small (%d bytes)", size)
	}
	if size > maxArchiveSize {
		return l, corrupt("file too large (%d bytes)", size)
	}

	head := make([]byte, filenameHeaderSize)
	if err := readFull(r, head, 0); err != nil {
		return l, err
	}
	if string(head[:8]) != filenameMagic {
		return l, corrupt("bad filename magic %q", head[:8])
	}
	l.FilenameSize = le.Uint32(head[8:])
	if int64(l.FilenameSize) < filenameHeaderSize || int64(l.FilenameSize)+packHeaderSize > size {
		return l, corrupt("filename section size %d out of range", l.FilenameSize)
	}

	packHead := make([]byte, packHeaderSize)
	if err := readFull(r, packHead, int64(l.FilenameSize)); err != nil {
		return l, err
	}
	if string(packHead[:8]) != packMagic {
		return l, corrupt("bad pack magic %q", packHead[:8])
	}
	l.PackSize = le.Uint32(packHead[8:])
	count := int64(le.Uint32(packHead[12:]))

	if int64(l.PackSize) < packHeaderSize+count*indexEntrySize {
		return l, corrupt("pack section size %d too small for %d entries", l.PackSize, count)
	}
	if l.DataStart() > size {
		return l, corrupt("pack section size %d exceeds file", l.PackSize)
	}
	namesStart := int64(filenameHeaderSize) + count*nameOffsetSize
	if namesStart > int64(l.FilenameSize) {
		return l, corrupt("name table for %d entries exceeds filename section", count)
	}

	nameOffsets := make([]byte, count*nameOffsetSize)
	if err := readFull(r, nameOffsets, filenameHeaderSize); err != nil {
		return l, err
	}
	index := make([]byte, count*indexEntrySize)
	if err := readFull(r, index, int64(l.FilenameSize)+packHeaderSize); err != nil {
		return l, err
	}

	l.Entries = make([]indexEntry, count)
	for i := range l.Entries {
		e := indexEntry{
			NameOffset: le.Uint32(nameOffsets[i*nameOffsetSize:]),
			Offset:     le.Uint32(index[i*indexEntrySize:]),
			Size:       le.Uint32(index[i*indexEntrySize+4:]),
		}
		if int64(e.NameOffset) < namesStart || e.NameOffset >= l.FilenameSize {
			return l, corrupt("entry %d: name offset 0x%X outside name table", i, e.NameOffset)
		}
		if int64(e.Offset) < l.DataStart() {
			return l, corrupt("entry %d: payload offset 0x%X overlaps index", i, e.Offset)
		}
		if int64(e.Offset)+int64(e.Size) > size {
			return l, corrupt("entry %d: payload 0x%X+%d exceeds file length %d", i, e.Offset, e.Size, size)
		}
		l.Entries[i] = e
	}
	return l, nil
}

// nameAt extracts the NUL-terminated name starting at off within table.
func nameAt(table []byte, off uint32) (string, error) {
	for end := off; int(end) < len(table); end++ {
		if table[end] == 0 {
			return string(table[off:end]), nil
		}
	}
	return "", corrupt("name at 0x%X is not terminated", off)
}

// computeLayout packs entries tightly after a freshly sized header.
func computeLayout(entries []Entry) (layout, error) {
	count := int64(len(entries))
	namesStart := int64(filenameHeaderSize) + count*nameOffsetSize

	l := layout{Entries: make([]indexEntry, len(entries))}
	cursor := namesStart
	for i, e := range entries {
		l.Entries[i].NameOffset = uint32(cursor)
		cursor += int64(len(e.Name)) + 1
		if cursor > maxArchiveSize {
			return l, services.Wrap(services.ErrValidation, "pck", "encode", "name table too large", nil)
		}
	}
	l.FilenameSize = uint32(alignUp(cursor))
	l.PackSize = uint32(alignUp(packHeaderSize + count*indexEntrySize))

	offset := l.DataStart()
	for i, e := range entries {
		if offset+int64(len(e.Data)) > maxArchiveSize {
			return l, services.Wrap(services.ErrValidation, "pck", "encode",
				fmt.Sprintf("entry %q pushes archive past 4 GiB", e.Name), nil)
		}
		l.Entries[i].Offset = uint32(offset)
		l.Entries[i].Size = uint32(len(e.Data))
		offset += int64(len(e.Data))
	}
	return l, nil
}

// writeHeader emits both sections for l with the given names.
func writeHeader(w io.Writer, l layout, entries []Entry) error {
	header := make([]byte, l.DataStart())
	copy(header, filenameMagic)
	le.PutUint32(header[8:], l.FilenameSize)
	for i, e := range l.Entries {
		le.PutUint32(header[filenameHeaderSize+i*nameOffsetSize:], e.NameOffset)
		copy(header[e.NameOffset:], entries[i].Name)
	}

	pack := header[l.FilenameSize:]
	copy(pack, packMagic)
	le.PutUint32(pack[8:], l.PackSize)
	le.PutUint32(pack[12:], uint32(len(l.Entries)))
	for i, e := range l.Entries {
		row := pack[packHeaderSize+i*indexEntrySize:]
		le.PutUint32(row, e.Offset)
		le.PutUint32(row[4:], e.Size)
	}

	_, err := w.Write(header)
	return err
}
