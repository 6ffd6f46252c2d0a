package logging

import (
	"context"
	"log/slog"

	"furymod/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for install run identifiers.
	FieldRunID = "run_id"
	// FieldCategory is the standardized structured logging key for mod categories (Sounds, Hex, ...).
	FieldCategory = "category"
	// FieldMod is the standardized structured logging key for mod folder names.
	FieldMod = "mod"
	// FieldEventType classifies a log line for filtering (e.g. "patch_applied").
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to an operator.
	FieldErrorHint = "error_hint"
	// FieldImpact states the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDiagnosticKind carries services.Kind for skipped items.
	FieldDiagnosticKind = "diagnostic_kind"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if category, ok := services.CategoryFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCategory, category))
	}
	if mod, ok := services.ModFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldMod, mod))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
