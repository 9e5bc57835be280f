package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"ibancheck/internal/iban"
	"ibancheck/internal/iban/country"
	"ibancheck/internal/iban/metrics"
	dErrors "ibancheck/pkg/domain-errors"
	"ibancheck/pkg/platform/audit"
	"ibancheck/pkg/requestcontext"
)

const (
	// DefaultMaxBatch caps a single request when no limit is configured.
	DefaultMaxBatch = 1000

	// parallelThreshold is the batch size below which fan-out costs more than
	// evaluating inline.
	parallelThreshold = 64

	// chunkSize is the number of candidates one goroutine evaluates.
	chunkSize = 32
)

// Evaluator produces a verdict for a single candidate.
type Evaluator interface {
	Evaluate(candidate string) iban.Verdict
}

// CountryLister enumerates the supported countries.
type CountryLister interface {
	All() []country.Country
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Fingerprinter interface {
	Fingerprint(value string) string
}

// Service validates batches of IBAN candidates and records the outcome.
type Service struct {
	evaluator      Evaluator
	countries      CountryLister
	logger         *slog.Logger
	auditPublisher AuditPublisher
	fingerprinter  Fingerprinter
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	workers        int
	maxBatch       int
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithFingerprinter(f Fingerprinter) Option {
	return func(s *Service) {
		s.fingerprinter = f
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithWorkers bounds the number of goroutines evaluating one batch.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithMaxBatch bounds the number of candidates accepted per call.
func WithMaxBatch(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatch = n
		}
	}
}

// New constructs a Service.
func New(evaluator Evaluator, countries CountryLister, opts ...Option) *Service {
	s := &Service{
		evaluator: evaluator,
		countries: countries,
		logger:    slog.Default(),
		tracer:    otel.Tracer("ibancheck/internal/iban/service"),
		workers:   runtime.GOMAXPROCS(0),
		maxBatch:  DefaultMaxBatch,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate evaluates every candidate and returns the verdicts in input order.
// Candidates are passed to the evaluator unchanged.
func (s *Service) Validate(ctx context.Context, candidates []string) ([]iban.Verdict, error) {
	if len(candidates) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "at least one IBAN is required")
	}
	if len(candidates) > s.maxBatch {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("too many IBANs: %d submitted, at most %d allowed", len(candidates), s.maxBatch))
	}

	ctx, span := s.tracer.Start(ctx, "iban.Validate",
		trace.WithAttributes(attribute.Int("iban.batch_size", len(candidates))),
	)
	defer span.End()

	start := time.Now()
	verdicts, err := s.evaluate(ctx, candidates)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation cancelled")
		return nil, err
	}
	s.metrics.ObserveBatchSize(len(candidates))
	s.metrics.ObserveEvaluateLatency(time.Since(start))

	valid := 0
	for _, v := range verdicts {
		decision := decisionOf(v)
		if v.Valid() {
			valid++
		}
		s.metrics.IncrementOutcome(decision, string(v.Reason()))
		s.emitValidated(ctx, v, decision)
	}
	span.SetAttributes(attribute.Int("iban.valid_count", valid))

	s.logger.DebugContext(ctx, "validated iban batch",
		"request_id", requestcontext.RequestID(ctx),
		"batch_size", len(candidates),
		"valid", valid,
		"duration", time.Since(start),
	)
	return verdicts, nil
}

// ValidateOne is Validate for a single candidate.
func (s *Service) ValidateOne(ctx context.Context, candidate string) (iban.Verdict, error) {
	verdicts, err := s.Validate(ctx, []string{candidate})
	if err != nil {
		return iban.Verdict{}, err
	}
	return verdicts[0], nil
}

// Countries returns the supported countries sorted by code.
func (s *Service) Countries() []country.Country {
	return s.countries.All()
}

// evaluate fans the batch out in fixed chunks. Each goroutine writes only its
// own indices of the pre-sized result, so no locking is needed.
func (s *Service) evaluate(ctx context.Context, candidates []string) ([]iban.Verdict, error) {
	verdicts := make([]iban.Verdict, len(candidates))

	if len(candidates) < parallelThreshold || s.workers == 1 {
		for i, c := range candidates {
			verdicts[i] = s.evaluator.Evaluate(c)
		}
		return verdicts, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for lo := 0; lo < len(candidates); lo += chunkSize {
		if gctx.Err() != nil {
			break
		}
		hi := min(lo+chunkSize, len(candidates))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				verdicts[i] = s.evaluator.Evaluate(candidates[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return verdicts, nil
}

func (s *Service) emitValidated(ctx context.Context, v iban.Verdict, decision string) {
	if s.auditPublisher == nil {
		return
	}

	subject := requestcontext.ClientID(ctx)
	if subject == "" {
		subject = requestcontext.ClientIP(ctx)
	}
	event := audit.Event{
		Action:     string(audit.EventIBANValidated),
		Subject:    subject,
		Decision:   decision,
		Reason:     string(v.Reason()),
		RequestID:  requestcontext.RequestID(ctx),
		IP:         requestcontext.ClientIP(ctx),
		MaskedIBAN: iban.Mask(v.IBAN),
	}
	if s.fingerprinter != nil {
		event.Fingerprint = s.fingerprinter.Fingerprint(v.IBAN)
	}

	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.metrics.IncrementAuditDropped()
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"request_id", event.RequestID,
			"error", err,
		)
	}
}

func decisionOf(v iban.Verdict) string {
	if v.Valid() {
		return "valid"
	}
	return "invalid"
}
