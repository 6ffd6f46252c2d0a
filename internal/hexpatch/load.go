package hexpatch

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"furymod/internal/services"
)

// IsDefinitionFile reports whether name has a recognised definition suffix.
func IsDefinitionFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".hex", ".txt", ".ips":
		return true
	default:
		return false
	}
}

// LoadSet parses every definition file under each folder. Folders are taken
// in the order given; files within a folder are visited in lexical order.
// Malformed lines and unreadable files or folders become diagnostics; the
// remaining folders are still loaded.
func LoadSet(folders []string) (Set, services.Diagnostics) {
	var (
		set   Set
		diags services.Diagnostics
	)
	for _, folder := range folders {
		_ = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				diags.Add(fileDiagnostic(folder, path, err))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !IsDefinitionFile(d.Name()) {
				return nil
			}
			patches, fileDiags := LoadFile(folder, path)
			set = append(set, patches...)
			diags = append(diags, fileDiags...)
			return nil
		})
	}
	return set, diags
}

// LoadFile parses one definition file. folder is used for source labels.
func LoadFile(folder, path string) (Set, services.Diagnostics) {
	rel, err := filepath.Rel(folder, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	src := Source{Folder: folder, File: filepath.ToSlash(rel)}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Diagnostics{fileDiagnostic(folder, path, err)}
	}
	if strings.EqualFold(filepath.Ext(path), ".ips") {
		set, diags := parseIPS(data, src)
		return set, diags
	}
	set, diags, err := parseText(bytes.NewReader(data), src)
	if err != nil {
		diags.Add(services.Diagnostic{
			Stage:  "hexpatch",
			Key:    src.File,
			Source: src.String(),
			Offset: services.NoOffset,
			Err:    services.Wrap(services.ErrMalformedPatch, "hexpatch", "parse", "read lines", err),
		})
	}
	return set, diags
}

func fileDiagnostic(folder, path string, err error) services.Diagnostic {
	rel, relErr := filepath.Rel(folder, path)
	if relErr != nil {
		rel = path
	}
	src := Source{Folder: folder, File: filepath.ToSlash(rel)}
	key := src.File
	if rel == "." {
		src.File = ""
		key = filepath.Base(folder)
	}
	return services.Diagnostic{
		Stage:  "hexpatch",
		Key:    key,
		Source: src.String(),
		Offset: services.NoOffset,
		Err:    services.Wrap(services.ErrIO, "hexpatch", "read definition", path, err),
	}
}
