package hexpatch

import (
	"bytes"
	"fmt"
	"os"

	"furymod/internal/fileutil"
	"furymod/internal/services"
)

// Options tunes Apply.
type Options struct {
	// RequireExpected skips patches that do not declare expected bytes.
	RequireExpected bool
}

// Result summarises one Apply call.
type Result struct {
	Applied     int
	Diagnostics services.Diagnostics
	Overlaps    []Overlap
}

type span struct {
	start, end int64
	src        Source
}

// Apply writes set into image with default options.
func Apply(image []byte, set Set) Result {
	return Options{}.Apply(image, set)
}

// ApplyFile patches the file at path with default options.
func ApplyFile(path string, set Set) (Result, error) {
	return Options{}.ApplyFile(path, set)
}

// Apply writes each patch of set into image in order. Patches that address
// an unknown region, run past the image, or find unexpected bytes are
// skipped with a diagnostic. Later patches overwrite earlier ones.
func (o Options) Apply(image []byte, set Set) Result {
	var (
		res      Result
		written  []span
		resolver = newRegionResolver(image)
	)
	for _, p := range set {
		offset, err := resolver.resolve(p)
		if err != nil {
			res.Diagnostics.Add(patchDiagnostic(p, services.NoOffset, err))
			continue
		}
		size := int64(len(image))
		if !fits(offset, len(p.Bytes), size) {
			res.Diagnostics.Add(patchDiagnostic(p, offset, services.Wrap(services.ErrOutOfBounds, "hexpatch", "apply",
				fmt.Sprintf("%d bytes at 0x%X exceed image size 0x%X", len(p.Bytes), offset, len(image)), nil)))
			continue
		}
		end := offset + int64(len(p.Bytes))
		if p.Expected == nil && o.RequireExpected {
			res.Diagnostics.Add(patchDiagnostic(p, offset, services.Wrap(services.ErrPatchMismatch, "hexpatch", "apply",
				"expected bytes required", nil)))
			continue
		}
		if p.Expected != nil && !bytes.Equal(image[offset:end], p.Expected) {
			res.Diagnostics.Add(patchDiagnostic(p, offset, services.Wrap(services.ErrPatchMismatch, "hexpatch", "apply",
				fmt.Sprintf("found % X, expected % X", image[offset:end], p.Expected), nil)))
			continue
		}

		for _, prev := range written {
			lo, hi := max(prev.start, offset), min(prev.end, end)
			if lo < hi {
				res.Overlaps = append(res.Overlaps, Overlap{Earlier: prev.src, Later: p.Source, Offset: lo, Length: int(hi - lo)})
			}
		}
		copy(image[offset:end], p.Bytes)
		written = append(written, span{start: offset, end: end, src: p.Source})
		res.Applied++
	}
	return res
}

// ApplyFile reads the image at path, applies set, and atomically writes the
// result back when at least one patch applied. Only I/O failures on the
// image itself are returned as errors.
func (o Options) ApplyFile(path string, set Set) (Result, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return Result{}, services.Wrap(services.ErrIO, "hexpatch", "read image", path, err)
	}
	res := o.Apply(image, set)
	if res.Applied == 0 {
		return res, nil
	}
	if err := fileutil.WriteFileAtomic(path, image, 0o755); err != nil {
		return res, services.Wrap(services.ErrIO, "hexpatch", "write image", path, err)
	}
	return res, nil
}

// fits reports whether n bytes at offset stay within limit without computing
// offset+n, which can overflow for hostile offsets.
func fits(offset int64, n int, limit int64) bool {
	return offset >= 0 && offset <= limit && int64(n) <= limit-offset
}

func patchDiagnostic(p Patch, offset int64, err error) services.Diagnostic {
	return services.Diagnostic{
		Stage:  "hexpatch",
		Key:    p.Target(),
		Source: p.Source.String(),
		Offset: offset,
		Err:    err,
	}
}
