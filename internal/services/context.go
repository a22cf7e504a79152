package services

import "context"

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	kindKey   contextKey = "database"
	pageIDKey contextKey = "page_id"
)

// WithRunID annotates context with the sync run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the sync run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithKind annotates context with the database kind being synced.
func WithKind(ctx context.Context, kind string) context.Context {
	if kind == "" {
		return ctx
	}
	return context.WithValue(ctx, kindKey, kind)
}

// KindFromContext returns the database kind if present.
func KindFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(kindKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPageID annotates context with the page currently being processed.
func WithPageID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, pageIDKey, id)
}

// PageIDFromContext returns the page ID if present.
func PageIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(pageIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
