package testsupport

import "encoding/binary"

// PESection describes one raw section of a synthetic PE image.
type PESection struct {
	Name string
	Size uint32
}

// PE layout constants for the synthetic image.
const (
	peHeaderOffset   = 0x40
	peDataAlign      = 0x100
	peSectionHdrSize = 40
)

// PEImage builds a minimal i386 PE image with the given sections and no
// optional header. Section raw data starts at 0x100 and follows back to back,
// zero filled. debug/pe accepts it.
func PEImage(sections ...PESection) []byte {
	le := binary.LittleEndian
	dataStart := uint32(peDataAlign)
	total := dataStart
	for _, s := range sections {
		total += s.Size
	}
	img := make([]byte, total)

	copy(img, "MZ")
	le.PutUint32(img[0x3C:], peHeaderOffset)
	copy(img[peHeaderOffset:], "PE\x00\x00")

	fh := img[peHeaderOffset+4:]
	le.PutUint16(fh[0:], 0x14c) // i386
	le.PutUint16(fh[2:], uint16(len(sections)))

	hdr := peHeaderOffset + 4 + 20
	offset := dataStart
	for i, s := range sections {
		sh := img[hdr+i*peSectionHdrSize:]
		copy(sh[:8], s.Name)
		le.PutUint32(sh[8:], s.Size)   // VirtualSize
		le.PutUint32(sh[12:], offset)  // VirtualAddress
		le.PutUint32(sh[16:], s.Size)  // SizeOfRawData
		le.PutUint32(sh[20:], offset)  // PointerToRawData
		offset += s.Size
	}
	return img
}

// SectionOffset returns the raw file offset of the i-th section built by PEImage.
func SectionOffset(sections []PESection, i int) int64 {
	offset := int64(peDataAlign)
	for _, s := range sections[:i] {
		offset += int64(s.Size)
	}
	return offset
}
