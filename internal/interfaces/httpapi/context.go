package httpapi

import (
	"context"
)

type contextKey string

const requestIDContextKey contextKey = "request_id"

const requestIDHeader = "X-Request-ID"

func withRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

func requestIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDContextKey).(string)
	return v, ok && v != ""
}
