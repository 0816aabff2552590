package platform

import "context"

// ctxKey is a context key type for correlation id propagation.
type ctxKey string

const requestIDKey ctxKey = "request_id"

// NoRequestID is reported when a context carries no correlation id.
const NoRequestID = "no-id"

// WithRequestID attaches a correlation id to the context. Every orchestrator
// invocation carries one so that its full activity trace can be reconstructed
// from the log channels.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the correlation id attached to ctx, or NoRequestID.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		return id
	}
	return NoRequestID
}
