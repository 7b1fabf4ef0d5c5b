package services

import "context"

type contextKey string

const (
	rundownKey   contextKey = "rundown"
	operationKey contextKey = "operation"
	requestIDKey contextKey = "request_id"
)

// WithRundown annotates context with the rundown label (registry name or
// show/playlist pair).
func WithRundown(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, rundownKey, name)
}

// RundownFromContext returns the rundown label if present.
func RundownFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(rundownKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithOperation annotates context with the coordinator operation name.
func WithOperation(ctx context.Context, op string) context.Context {
	if op == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey, op)
}

// OperationFromContext returns the operation name if present.
func OperationFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(operationKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
