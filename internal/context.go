package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextUserKey   ctxKey = "userID"
	ContextSourceKey ctxKey = "source"
)

func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if userID, ok := ctx.Value(ContextUserKey).(int64); ok {
		return userID
	}
	return 0
}

func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

// SourceFromContext names the surface a request came through ("cli", "http").
func SourceFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if source, ok := ctx.Value(ContextSourceKey).(string); ok {
		return source
	}
	return ""
}

func ContextWithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, ContextSourceKey, source)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
