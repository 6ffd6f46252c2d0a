package soundenc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"furymod/internal/services"
)

// LoopExtension is the suffix of loop point sidecar files.
const LoopExtension = ".loop"

// Omit marks a loop point that is not written to the encoded stream.
const Omit int64 = -1

// Loop holds sample positions for the LoopStart/LoopEnd comments.
type Loop struct {
	Start int64
	End   int64
}

// Args returns the opusenc comment flags for l.
func (l Loop) Args() []string {
	var args []string
	if l.Start != Omit {
		args = append(args, "--comment", "LoopStart="+strconv.FormatInt(l.Start, 10))
	}
	if l.End != Omit {
		args = append(args, "--comment", "LoopEnd="+strconv.FormatInt(l.End, 10))
	}
	return args
}

// LoopPath returns the sidecar path for an audio file: same directory and
// base name, ".loop" suffix.
func LoopPath(audioPath string) string {
	base := filepath.Base(audioPath)
	return filepath.Join(filepath.Dir(audioPath), strings.TrimSuffix(base, filepath.Ext(base))+LoopExtension)
}

// ReadLoop reads the sidecar for audioPath. Line one is the start, line two
// the end; an empty line omits that point. A missing sidecar yields 0/0.
// A sidecar with fewer than two lines or a non-numeric value yields 0/0 and
// an ErrValidation error the caller reports as a diagnostic.
func ReadLoop(audioPath string) (Loop, error) {
	path := LoopPath(audioPath)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Loop{}, nil
	}
	if err != nil {
		return Loop{}, services.Wrap(services.ErrIO, "soundenc", "read loop", path, err)
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() && len(lines) < 2 {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if len(lines) < 2 {
		return Loop{}, services.Wrap(services.ErrValidation, "soundenc", "read loop",
			fmt.Sprintf("%s has fewer than 2 lines", filepath.Base(path)), nil)
	}

	start, err := parseLoopPoint(lines[0])
	if err != nil {
		return Loop{}, services.Wrap(services.ErrValidation, "soundenc", "read loop", filepath.Base(path)+" line 1", err)
	}
	end, err := parseLoopPoint(lines[1])
	if err != nil {
		return Loop{}, services.Wrap(services.ErrValidation, "soundenc", "read loop", filepath.Base(path)+" line 2", err)
	}
	return Loop{Start: start, End: end}, nil
}

func parseLoopPoint(s string) (int64, error) {
	if s == "" {
		return Omit, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative loop point %d", v)
	}
	return v, nil
}
