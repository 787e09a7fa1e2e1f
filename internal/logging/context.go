package logging

import (
	"context"
	"log/slog"

	"shipwright/internal/services"
)

const (
	// FieldTarget is the standardized structured logging key for build
	// target names.
	FieldTarget = "target"
	// FieldRunID is the standardized structured logging key for the build
	// run correlation identifier.
	FieldRunID = "run_id"
	// FieldTool is the standardized structured logging key for external
	// tool names.
	FieldTool = "tool"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if target, ok := services.TargetFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldTarget, target))
	}
	if runID, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, runID))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from
// the supplied context.
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
