package logging

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

var defaultLogger = slog.Default()

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := Lookup(ctx); ok {
		return logger
	}

	return defaultLogger
}

// Lookup returns the logger stored in ctx, if any.
func Lookup(ctx context.Context) (*slog.Logger, bool) {
	if ctx == nil {
		return nil, false
	}
	logger, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	return logger, ok
}

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// WithRequestID enriches the context logger with request_id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withAttr(ctx, slog.String("request_id", requestID))
}

// WithTraceID enriches the context logger with trace_id.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return withAttr(ctx, slog.String("trace_id", traceID))
}

// WithCorrelationID enriches the context logger with correlation_id.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return withAttr(ctx, slog.String("correlation_id", correlationID))
}

// WithSurface tags log lines with the presenting surface (web, api, tui).
func WithSurface(ctx context.Context, surface string) context.Context {
	return withAttr(ctx, slog.String("surface", surface))
}

func withAttr(ctx context.Context, attr slog.Attr) context.Context {
	return WithContext(ctx, FromContext(ctx).With(attr))
}

// SetDefault sets the fallback logger and slog's global default.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
