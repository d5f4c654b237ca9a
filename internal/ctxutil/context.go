// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import "context"

type contextKey string

const (
	requestIDKey contextKey = "ctxutil.requestID"
	toolNameKey  contextKey = "ctxutil.toolName"
)

// WithRequestID adds a request ID to the context for tracing.
// Request ID is generated per API request for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}

// WithToolName tags the context with the tool being dispatched.
func WithToolName(ctx context.Context, tool string) context.Context {
	return context.WithValue(ctx, toolNameKey, tool)
}

// GetToolName retrieves the dispatched tool name from the context.
// Returns empty string when not set.
func GetToolName(ctx context.Context) string {
	if tool, ok := ctx.Value(toolNameKey).(string); ok {
		return tool
	}
	return ""
}
