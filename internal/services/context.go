package services

import "context"

type contextKey string

const (
	targetKey contextKey = "target"
	runIDKey  contextKey = "run_id"
)

// WithTarget annotates context with the build target name.
func WithTarget(ctx context.Context, target string) context.Context {
	if target == "" {
		return ctx
	}
	return context.WithValue(ctx, targetKey, target)
}

// TargetFromContext returns the target name if present.
func TargetFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(targetKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRunID annotates context with the build run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext returns the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(runIDKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
