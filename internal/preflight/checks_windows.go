//go:build windows

package preflight

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

// Windows ignores the read-only attribute on directories, so writability is
// checked by creating a file.
func dirAccess(path string) error {
	f, err := os.CreateTemp(path, ".furymod-access-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func fileAccess(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return err
	}
	if attrs&windows.FILE_ATTRIBUTE_READONLY != 0 {
		return errors.New("file is read-only")
	}
	return nil
}
