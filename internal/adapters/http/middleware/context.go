package middleware

import (
	"context"
	"net/http"
)

type (
	requestIDKey     struct{}
	correlationIDKey struct{}
)

// ForwardIDs are the inbound request's IDs that outbound calls made on its
// behalf, such as a remote quote import, carry upstream.
type ForwardIDs struct {
	RequestID     string
	CorrelationID string
}

// ForwardIDsFromContext collects whatever IDs the ID middleware stored in ctx.
func ForwardIDsFromContext(ctx context.Context) ForwardIDs {
	return ForwardIDs{
		RequestID:     RequestIDFromContext(ctx),
		CorrelationID: CorrelationIDFromContext(ctx),
	}
}

// Apply sets the non-empty IDs on h under the same headers the
// middleware reads them from.
func (f ForwardIDs) Apply(h http.Header) {
	if f.RequestID != "" {
		h.Set(HeaderRequestID, f.RequestID)
	}
	if f.CorrelationID != "" {
		h.Set(HeaderCorrelationID, f.CorrelationID)
	}
}

// RequestIDFromContext returns the request ID, or "" when ctx has none.
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey{})
}

// CorrelationIDFromContext returns the correlation ID, or "" when ctx has none.
func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, correlationIDKey{})
}

// ContextWithRequestID stores a request ID in the context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// ContextWithCorrelationID stores a correlation ID in the context.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

func stringValue(ctx context.Context, key any) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(key).(string)
	return s
}
