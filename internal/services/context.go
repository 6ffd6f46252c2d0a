package services

import "context"

type contextKey string

const (
	runIDKey    contextKey = "run_id"
	categoryKey contextKey = "category"
	modKey      contextKey = "mod"
)

// WithRunID annotates context with the install run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the install run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCategory annotates context with the mod category being installed.
func WithCategory(ctx context.Context, category string) context.Context {
	if category == "" {
		return ctx
	}
	return context.WithValue(ctx, categoryKey, category)
}

// CategoryFromContext returns the mod category if present.
func CategoryFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(categoryKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithMod annotates context with the mod folder currently being processed.
func WithMod(ctx context.Context, mod string) context.Context {
	if mod == "" {
		return ctx
	}
	return context.WithValue(ctx, modKey, mod)
}

// ModFromContext returns the mod folder if present.
func ModFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(modKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
