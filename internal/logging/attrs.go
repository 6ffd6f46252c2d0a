package logging

import (
	"context"
	"log/slog"
	"time"

	"furymod/internal/services"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Alert(value string) Attr { return slog.String(FieldAlert, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func attrsToArgs(attrs []Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

func Args(attrs ...Attr) []any {
	return attrsToArgs(attrs)
}

func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// HasAttrKey returns true if any attribute in attrs has the given key.
func HasAttrKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// WarnWithContext logs a warning with enforced event_type, error_hint, and impact fields.
// If any of these fields are missing from attrs, defaults are injected.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	if !HasAttrKey(attrs, FieldEventType) {
		attrs = append(attrs, String(FieldEventType, eventType))
	}
	if !HasAttrKey(attrs, FieldErrorHint) {
		attrs = append(attrs, String(FieldErrorHint, "check logs for details"))
	}
	if !HasAttrKey(attrs, FieldImpact) {
		attrs = append(attrs, String(FieldImpact, "operation completed with warnings"))
	}
	logger.Warn(msg, Args(attrs...)...)
}

// ErrorWithContext logs an error with enforced event_type and error_hint fields.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	if !HasAttrKey(attrs, FieldEventType) {
		attrs = append(attrs, String(FieldEventType, eventType))
	}
	if !HasAttrKey(attrs, FieldErrorHint) {
		attrs = append(attrs, String(FieldErrorHint, "check logs for details"))
	}
	logger.Error(msg, Args(attrs...)...)
}

// DiagnosticAttrs builds the attribute set used whenever an item is skipped.
func DiagnosticAttrs(diag services.Diagnostic) []Attr {
	attrs := []Attr{
		String(FieldDiagnosticKind, diag.Kind()),
		String("key", diag.Key),
	}
	if diag.Source != "" {
		attrs = append(attrs, String("source", diag.Source))
	}
	if diag.Offset >= 0 {
		attrs = append(attrs, Int64("offset", diag.Offset))
	}
	if diag.Err != nil {
		attrs = append(attrs, Error(diag.Err))
	}
	return attrs
}

// LogDiagnostics writes one warning per skipped item.
func LogDiagnostics(logger *slog.Logger, diags []services.Diagnostic) {
	for _, diag := range diags {
		WarnWithContext(logger, "item skipped", "item_skipped",
			append(DiagnosticAttrs(diag),
				String(FieldImpact, "this modification was not installed"),
				String(FieldErrorHint, hintFor(diag)),
			)...,
		)
	}
}

func hintFor(diag services.Diagnostic) string {
	switch diag.Kind() {
	case "patch_mismatch":
		return "the executable differs from what the mod expects; check the game version or other hex mods"
	case "out_of_bounds":
		return "the patch offset is past the end of the executable; check the mod targets this game version"
	case "malformed_patch":
		return "fix the patch definition line"
	case "not_found":
		return "no game file matches this name"
	case "duplicate":
		return "two mods provide the same file; remove one"
	case "external_tool":
		return "check the encoder is installed and the source file is valid"
	default:
		return "check logs for details"
	}
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
