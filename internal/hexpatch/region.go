package hexpatch

import (
	"bytes"
	"debug/pe"
	"fmt"

	"furymod/internal/services"
)

// regionResolver maps section-relative addresses to file offsets. The PE
// headers are parsed on first use.
type regionResolver struct {
	image    []byte
	parsed   bool
	sections map[string]*pe.SectionHeader
	err      error
}

func newRegionResolver(image []byte) *regionResolver {
	return &regionResolver{image: image}
}

// resolve returns the absolute file offset of p and the number of bytes the
// addressed region allows from that offset.
func (r *regionResolver) resolve(p Patch) (int64, error) {
	if p.Region == "" {
		return p.Offset, nil
	}
	if !r.parsed {
		r.load()
	}
	if r.err != nil {
		return 0, services.Wrap(services.ErrOutOfBounds, "hexpatch", "resolve region", p.Region, r.err)
	}
	sec, ok := r.sections[p.Region]
	if !ok {
		return 0, services.Wrap(services.ErrOutOfBounds, "hexpatch", "resolve region", fmt.Sprintf("no section %q", p.Region), nil)
	}
	if !fits(p.Offset, len(p.Bytes), int64(sec.Size)) {
		return 0, services.Wrap(services.ErrOutOfBounds, "hexpatch", "resolve region",
			fmt.Sprintf("%s: %d bytes exceed section size 0x%X", p.Target(), len(p.Bytes), sec.Size), nil)
	}
	return int64(sec.Offset) + p.Offset, nil
}

func (r *regionResolver) load() {
	r.parsed = true
	f, err := pe.NewFile(bytes.NewReader(r.image))
	if err != nil {
		r.err = fmt.Errorf("image is not a PE file: %w", err)
		return
	}
	defer f.Close()
	r.sections = make(map[string]*pe.SectionHeader, len(f.Sections))
	for _, s := range f.Sections {
		if _, dup := r.sections[s.Name]; dup {
			continue
		}
		h := s.SectionHeader
		r.sections[s.Name] = &h
	}
}
