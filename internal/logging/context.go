package logging

import (
	"context"
	"log/slog"

	"vizmse/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRundown is the standardized key for the rundown label.
	FieldRundown = "rundown"
	// FieldOperation is the standardized key for coordinator operation names.
	FieldOperation = "operation"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to an operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldErrorKind carries services.Kind for failed operations.
	FieldErrorKind = "error_kind"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if name, ok := services.RundownFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRundown, name))
	}
	if op, ok := services.OperationFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldOperation, op))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
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
	return logger.With(Args(fields...)...)
}
