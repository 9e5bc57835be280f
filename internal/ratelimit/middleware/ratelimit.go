package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ibancheck/internal/ratelimit/metrics"
	"ibancheck/internal/ratelimit/models"
	dErrors "ibancheck/pkg/domain-errors"
	"ibancheck/pkg/platform/audit"
	"ibancheck/pkg/platform/circuit"
	"ibancheck/pkg/platform/httputil"
	"ibancheck/pkg/requestcontext"
)

const breakerName = "ratelimit-store"

// BucketStore counts requests per key.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Middleware struct {
	primary        BucketStore
	fallback       BucketStore
	breaker        *circuit.Breaker
	limit          int
	window         time.Duration
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	disabled       bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithFallback sets the store used while the primary store is failing.
// Without a fallback, requests are let through when the primary fails.
func WithFallback(store BucketStore) Option {
	return func(m *Middleware) {
		m.fallback = store
	}
}

func WithMetrics(metrics *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(m *Middleware) {
		m.auditPublisher = publisher
	}
}

// WithCircuitBreaker tunes the breaker guarding the primary store: how many
// failures open it, how many successes close it and how often it retries the primary.
func WithCircuitBreaker(opts ...circuit.Option) Option {
	return func(m *Middleware) {
		m.breaker = circuit.New(breakerName, opts...)
	}
}

// New builds a limiter allowing limit requests per window for each caller.
func New(store BucketStore, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		primary: store,
		breaker: circuit.New(breakerName),
		limit:   limit,
		window:  window,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit keys each request on the authenticated client ID, or on the
// client IP for anonymous callers.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		kind, identifier := callerIdentity(ctx)
		key := models.NewRateLimitKey(kind, identifier)

		result, degraded := m.check(ctx, key)
		if degraded {
			w.Header().Set("X-RateLimit-Status", "degraded")
		}
		if result == nil {
			m.metrics.IncrementDecision(string(kind), "bypassed")
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, result)

		if !result.Allowed {
			m.metrics.IncrementDecision(string(kind), "denied")
			m.emitExceeded(ctx, identifier)
			writeRateLimitExceeded(w, result)
			return
		}

		m.metrics.IncrementDecision(string(kind), "allowed")
		next.ServeHTTP(w, r)
	})
}

// check consults the primary store and falls back to the in-memory store
// while the circuit is open. An open circuit skips the primary between retries.
// A nil result means the request is let through unchecked.
func (m *Middleware) check(ctx context.Context, key string) (*models.RateLimitResult, bool) {
	if m.fallback != nil && !m.breaker.AllowPrimary() {
		return m.checkFallback(ctx, key)
	}

	result, err := m.primary.Allow(ctx, key, m.limit, m.window)
	if err != nil {
		m.metrics.IncrementStoreErrors()
		open, change := m.breaker.RecordFailure()
		m.metrics.SetDegraded(open && m.fallback != nil)
		m.logger.ErrorContext(ctx, "failed to check rate limit",
			"request_id", requestcontext.RequestID(ctx),
			"circuit_open", open,
			"error", err,
		)
		if change.Opened {
			m.logger.WarnContext(ctx, "rate limit store circuit opened",
				"breaker", m.breaker.Name(),
				"fallback", m.fallback != nil,
			)
		}
		if open && m.fallback != nil {
			return m.checkFallback(ctx, key)
		}
		return nil, false
	}

	closed, change := m.breaker.RecordSuccess()
	if change.Closed {
		m.logger.InfoContext(ctx, "rate limit store circuit closed", "breaker", m.breaker.Name())
	}
	if !closed && m.fallback != nil {
		// primary is recovering; keep counting in the fallback until the
		// circuit closes so limits stay consistent
		return m.checkFallback(ctx, key)
	}
	m.metrics.SetDegraded(false)
	return result, false
}

func (m *Middleware) checkFallback(ctx context.Context, key string) (*models.RateLimitResult, bool) {
	result, err := m.fallback.Allow(ctx, key, m.limit, m.window)
	if err != nil {
		m.logger.ErrorContext(ctx, "fallback rate limiter failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, true
	}
	return result, true
}

func (m *Middleware) emitExceeded(ctx context.Context, identifier string) {
	if m.auditPublisher == nil {
		return
	}
	event := audit.Event{
		Action:    string(audit.EventRateLimitExceeded),
		Subject:   identifier,
		Reason:    "limit_exceeded",
		RequestID: requestcontext.RequestID(ctx),
		IP:        requestcontext.ClientIP(ctx),
		Severity:  audit.SeverityWarning,
	}
	if err := m.auditPublisher.Emit(ctx, event); err != nil {
		m.logger.WarnContext(ctx, "failed to emit rate limit audit event",
			"request_id", event.RequestID,
			"error", err,
		)
	}
}

func callerIdentity(ctx context.Context) (models.KeyKind, string) {
	if clientID := requestcontext.ClientID(ctx); clientID != "" {
		return models.KeyKindClient, clientID
	}
	return models.KeyKindIP, requestcontext.ClientIP(ctx)
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:            string(dErrors.CodeRateLimited),
		ErrorDescription: "Too many requests. Please try again later.",
		RetryAfter:       result.RetryAfter,
	})
}
