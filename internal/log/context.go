package log

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// IntoContext stashes a request-scoped logger in the context. The HTTP
// layer installs one carrying the request ID, method, and path.
func IntoContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the request-scoped logger, or a default-backed
// one when none was installed.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: ComponentApp,
	}
}
