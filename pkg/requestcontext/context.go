// Package requestcontext carries request-scoped values from middleware to
// services without importing net/http. Middleware sets them; the IBAN service,
// the rate limiter and the audit publisher read them.
package requestcontext

import (
	"context"
	"time"
)

type key int

const (
	clientIDKey key = iota
	subjectKey
	clientIPKey
	userAgentKey
	requestIDKey
	requestTimeKey
)

func str(ctx context.Context, k key) string {
	s, _ := ctx.Value(k).(string)
	return s
}

// ClientID is the client_id claim of the bearer token, or "" when anonymous.
func ClientID(ctx context.Context) string { return str(ctx, clientIDKey) }

func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey, clientID)
}

func Subject(ctx context.Context) string { return str(ctx, subjectKey) }

func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

func ClientIP(ctx context.Context) string { return str(ctx, clientIPKey) }

func UserAgent(ctx context.Context) string { return str(ctx, userAgentKey) }

// WithClientMetadata sets the caller address and user agent together.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey, clientIP)
	return context.WithValue(ctx, userAgentKey, userAgent)
}

func RequestID(ctx context.Context) string { return str(ctx, requestIDKey) }

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now returns the time pinned for this request. Outside a request (CLI,
// workers, tests) it falls back to the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}
