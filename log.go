package stencil

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

var discardLogger = slog.New(slog.DiscardHandler)

// LoggingContext returns a copy of ctx carrying logger. A Registry rendering
// with that context logs template loads, cache activity, and failures to it.
// Without one, nothing is logged.
func LoggingContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func logger(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || l == nil {
		return discardLogger
	}
	return l
}
