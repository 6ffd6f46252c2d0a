// Package modscan discovers mod folders and the category subfolders inside
// them.
package modscan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"furymod/internal/services"
)

// Category names a kind of modification. The value is the subfolder name.
type Category string

const (
	Assets Category = "Assets"
	Codes  Category = "Codes"
	Hex    Category = "Hex"
	Sounds Category = "Sounds"
	Video  Category = "Video"
)

// Categories lists every category in discovery order.
var Categories = []Category{Assets, Codes, Hex, Sounds, Video}

// Mod is one folder under the mods directory.
type Mod struct {
	Name       string
	Dir        string
	Categories map[Category]string // category -> folder path
}

// Has reports whether the mod ships the given category.
func (m Mod) Has(c Category) bool {
	_, ok := m.Categories[c]
	return ok
}

// Result holds every discovered mod in lexical order. Mod folders that
// could not be read are left out and reported in Diagnostics, keyed by mod
// name.
type Result struct {
	Mods        []Mod
	Diagnostics services.Diagnostics
}

// Folders returns the category folders of all mods, in mod order.
func (r Result) Folders(c Category) []string {
	var out []string
	for _, m := range r.Mods {
		if dir, ok := m.Categories[c]; ok {
			out = append(out, dir)
		}
	}
	return out
}

// Total returns the number of category folders found across all mods.
func (r Result) Total() int {
	n := 0
	for _, m := range r.Mods {
		n += len(m.Categories)
	}
	return n
}

// readDir is swapped in tests to simulate unreadable folders.
var readDir = os.ReadDir

// Scan lists the mod folders under modsDir. Category subfolders match
// case-insensitively. A missing mods directory is a configuration error and
// an unreadable one is an I/O error; an unreadable mod folder only skips
// that mod.
func Scan(modsDir string) (Result, error) {
	entries, err := readDir(modsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, services.Wrap(services.ErrConfiguration, "modscan", "scan", fmt.Sprintf("mods directory %q does not exist", modsDir), nil)
		}
		return Result{}, services.Wrap(services.ErrIO, "modscan", "scan", modsDir, err)
	}

	var res Result
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(modsDir, entry.Name())
		mod := Mod{Name: entry.Name(), Dir: dir, Categories: map[Category]string{}}
		subs, err := readDir(dir)
		if err != nil {
			res.Diagnostics.Add(services.Diagnostic{
				Stage:  "modscan",
				Key:    entry.Name(),
				Source: dir,
				Offset: services.NoOffset,
				Err:    services.Wrap(services.ErrIO, "modscan", "read mod folder", dir, err),
			})
			continue
		}
		for _, sub := range subs {
			if !sub.IsDir() {
				continue
			}
			for _, c := range Categories {
				if _, taken := mod.Categories[c]; !taken && strings.EqualFold(sub.Name(), string(c)) {
					mod.Categories[c] = filepath.Join(dir, sub.Name())
				}
			}
		}
		res.Mods = append(res.Mods, mod)
	}
	return res, nil
}

// ListFiles returns every regular file below folder in lexical path order.
// Files for which skip returns true are left out.
func ListFiles(folder string, skip func(name string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if skip != nil && skip(d.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "modscan", "list files", folder, err)
	}
	sort.Strings(files)
	return files, nil
}
