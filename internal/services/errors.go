package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIO             = errors.New("io error")
	ErrCorruptArchive = errors.New("corrupt archive")
	ErrNotFound       = errors.New("not found")
	ErrMalformedPatch = errors.New("malformed patch")
	ErrPatchMismatch  = errors.New("patch mismatch")
	ErrOutOfBounds    = errors.New("out of bounds")
	ErrExternalTool   = errors.New("external tool error")
	ErrValidation     = errors.New("validation error")
	ErrConfiguration  = errors.New("configuration error")
	ErrDuplicate      = errors.New("duplicate")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err prevents the current operation from building a
// consistent model. Per-item markers (not found, malformed, mismatch, out of
// bounds, external tool, duplicate) are not fatal; the caller skips the item.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrMalformedPatch),
		errors.Is(err, ErrPatchMismatch),
		errors.Is(err, ErrOutOfBounds),
		errors.Is(err, ErrExternalTool),
		errors.Is(err, ErrDuplicate):
		return false
	default:
		return true
	}
}

// Kind returns the snake_case taxonomy name for err, or "unknown".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCorruptArchive):
		return "corrupt_archive"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformedPatch):
		return "malformed_patch"
	case errors.Is(err, ErrPatchMismatch):
		return "patch_mismatch"
	case errors.Is(err, ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrIO):
		return "io"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
