package logger

import "context"

type contextKey string

const (
	loggerKey    contextKey = "handoff.logger"
	requestIDKey contextKey = "handoff.request_id"
	flowIDKey    contextKey = "handoff.flow_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithFlowID tags the context with a handoff flow (marker) ID.
func WithFlowID(ctx context.Context, flowID string) context.Context {
	return context.WithValue(ctx, flowIDKey, flowID)
}

// FlowIDFromContext extracts the flow ID from context.
func FlowIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(flowIDKey).(string)
	return id
}

// L returns the context logger enriched with request and flow IDs.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	if reqID := RequestIDFromContext(ctx); reqID != "" {
		l = l.With("request_id", reqID)
	}
	if flowID := FlowIDFromContext(ctx); flowID != "" {
		l = l.With("flow_id", flowID)
	}
	return l
}
