package pck

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"

	"furymod/internal/fileutil"
	"furymod/internal/services"
)

// Entry is one named payload. Name carries the container-native suffix
// (for example "bgm_01.opus").
type Entry struct {
	Name string
	Data []byte
}

// Key returns the entry's match key: its name without directory or extension.
func (e Entry) Key() string {
	return Key(e.Name)
}

// Archive is an in-memory PCK archive. Entry order is the on-disk order and
// is preserved across Replace and Write.
type Archive struct {
	entries []Entry
}

// New builds an archive from entries. Payloads are not copied.
func New(entries ...Entry) *Archive {
	return &Archive{entries: append([]Entry(nil), entries...)}
}

// Load reads and validates the archive at path.
func Load(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "pck", "load", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "pck", "load", path, err)
	}
	archive, err := Decode(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return archive, nil
}

// Decode parses an archive of the given size from r.
func Decode(r io.ReaderAt, size int64) (*Archive, error) {
	l, err := readLayout(r, size)
	if err != nil {
		return nil, err
	}

	names := make([]byte, l.FilenameSize)
	if err := readFull(r, names, 0); err != nil {
		return nil, err
	}

	entries := make([]Entry, len(l.Entries))
	for i, ie := range l.Entries {
		name, err := nameAt(names, ie.NameOffset)
		if err != nil {
			return nil, err
		}
		data := make([]byte, ie.Size)
		if err := readFull(r, data, int64(ie.Offset)); err != nil {
			return nil, err
		}
		entries[i] = Entry{Name: name, Data: data}
	}
	return &Archive{entries: entries}, nil
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Entry returns the entry at index i.
func (a *Archive) Entry(i int) (Entry, error) {
	if i < 0 || i >= len(a.entries) {
		return Entry{}, indexError(i, len(a.entries))
	}
	return a.entries[i], nil
}

// Entries returns the entries in archive order. The payload slices are shared
// with the archive and must not be modified.
func (a *Archive) Entries() []Entry {
	return append([]Entry(nil), a.entries...)
}

// Extension returns the type tag of entry i: the suffix of its name, or the
// sniffed payload format when the name has none.
func (a *Archive) Extension(i int) (string, error) {
	e, err := a.Entry(i)
	if err != nil {
		return "", err
	}
	if ext := path.Ext(e.Name); ext != "" {
		return ext, nil
	}
	return SniffExtension(e.Data), nil
}

// Find returns the index of the first entry whose key equals Key(key).
func (a *Archive) Find(key string) (int, error) {
	want := Key(key)
	for i, e := range a.entries {
		if e.Key() == want {
			return i, nil
		}
	}
	return -1, services.Wrap(services.ErrNotFound, "pck", "find", fmt.Sprintf("no entry %q", want), nil)
}

// FindAll returns the indices of every entry whose key equals Key(key).
func (a *Archive) FindAll(key string) []int {
	want := Key(key)
	var out []int
	for i, e := range a.entries {
		if e.Key() == want {
			out = append(out, i)
		}
	}
	return out
}

// Replace swaps the payload of entry i and sets its suffix to ext. An empty
// ext keeps the current suffix. Nothing is written to disk.
func (a *Archive) Replace(i int, payload []byte, ext string) error {
	if i < 0 || i >= len(a.entries) {
		return indexError(i, len(a.entries))
	}
	e := &a.entries[i]
	if ext = strings.TrimSpace(ext); ext != "" {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		e.Name = strings.TrimSuffix(e.Name, path.Ext(e.Name)) + ext
	}
	e.Data = append([]byte(nil), payload...)
	return nil
}

// Clone returns a deep copy of the archive.
func (a *Archive) Clone() *Archive {
	out := &Archive{entries: make([]Entry, len(a.entries))}
	for i, e := range a.entries {
		out.entries[i] = Entry{Name: e.Name, Data: append([]byte(nil), e.Data...)}
	}
	return out
}

// Size returns the encoded size of the archive in bytes.
func (a *Archive) Size() (int64, error) {
	l, err := computeLayout(a.entries)
	if err != nil {
		return 0, err
	}
	size := l.DataStart()
	for _, e := range l.Entries {
		size += int64(e.Size)
	}
	return size, nil
}

// Encode writes the archive to w with a freshly computed, tightly packed layout.
func (a *Archive) Encode(w io.Writer) error {
	for _, e := range a.entries {
		if strings.IndexByte(e.Name, 0) >= 0 {
			return services.Wrap(services.ErrValidation, "pck", "encode", fmt.Sprintf("entry name %q contains NUL", e.Name), nil)
		}
	}
	l, err := computeLayout(a.entries)
	if err != nil {
		return err
	}
	if err := writeHeader(w, l, a.entries); err != nil {
		return err
	}
	for _, e := range a.entries {
		if _, err := w.Write(e.Data); err != nil {
			return err
		}
	}
	return nil
}

// Write encodes the archive to path via a temporary file in the same
// directory. On failure the existing file at path is left untouched.
func (a *Archive) Write(path string) error {
	if err := fileutil.WriteAtomic(path, 0o644, a.Encode); err != nil {
		return services.Wrap(services.ErrIO, "pck", "write", path, err)
	}
	return nil
}

// Key strips any directory and the final extension from name and returns
// the NFC form used for entry lookups. Matching is case-sensitive.
func Key(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, path.Ext(name))
	return norm.NFC.String(name)
}

func indexError(i, n int) error {
	return services.Wrap(services.ErrOutOfBounds, "pck", "entry", fmt.Sprintf("index %d outside [0,%d)", i, n), nil)
}
