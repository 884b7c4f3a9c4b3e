package web

import "context"

type requestIDKey struct{}
type callerIDKey struct{}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and a boolean indicating whether it was found.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// WithCallerID adds the calling account ID to the context.
func WithCallerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callerIDKey{}, id)
}

// GetCallerID retrieves the calling account ID from the context.
// Returns the ID and a boolean indicating whether it was found.
func GetCallerID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerIDKey{}).(string)
	return id, ok
}
