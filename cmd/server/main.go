package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ibancheck/internal/admin"
	"ibancheck/internal/iban"
	"ibancheck/internal/iban/country"
	ibanhandler "ibancheck/internal/iban/handler"
	ibanmetrics "ibancheck/internal/iban/metrics"
	"ibancheck/internal/iban/service"
	jwttoken "ibancheck/internal/jwt_token"
	"ibancheck/internal/platform/config"
	"ibancheck/internal/platform/httpserver"
	platformkafka "ibancheck/internal/platform/kafka"
	"ibancheck/internal/platform/logger"
	"ibancheck/internal/platform/metrics"
	"ibancheck/internal/platform/postgres"
	"ibancheck/internal/platform/redis"
	ratelimitmetrics "ibancheck/internal/ratelimit/metrics"
	ratelimitmw "ibancheck/internal/ratelimit/middleware"
	"ibancheck/internal/ratelimit/store/bucket"
	httptransport "ibancheck/internal/transport/http"
	"ibancheck/pkg/platform/audit"
	"ibancheck/pkg/platform/audit/publisher"
	kafkastore "ibancheck/pkg/platform/audit/store/kafka"
	"ibancheck/pkg/platform/audit/store/memory"
	pgstore "ibancheck/pkg/platform/audit/store/postgres"
	"ibancheck/pkg/platform/middleware/metadata"
)

const shutdownTimeout = 10 * time.Second

// infra holds the connections opened at startup so they can be closed in
// reverse order on shutdown.
type infra struct {
	closers      []func() error
	healthChecks map[string]httptransport.HealthCheck
}

func (i *infra) onClose(fn func() error) {
	i.closers = append(i.closers, fn)
}

func (i *infra) close(log *slog.Logger) {
	for n := len(i.closers) - 1; n >= 0; n-- {
		if err := i.closers[n](); err != nil {
			log.Warn("error closing dependency", "error", err)
		}
	}
}

// main wires configuration, infrastructure and the HTTP router, then keeps
// the server lifecycle small. Validation logic lives in internal/iban.
func main() {
	cfg := config.FromEnv()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := &infra{healthChecks: map[string]httptransport.HealthCheck{}}
	if err := run(ctx, cfg, log, deps); err != nil {
		log.Error("server stopped with error", "error", err)
		deps.close(log)
		os.Exit(1)
	}
	deps.close(log)
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger, deps *infra) error {
	auditStore, err := buildAuditStore(ctx, cfg.Audit, log, deps)
	if err != nil {
		return err
	}

	var pub *publisher.Publisher
	if auditStore != nil {
		pub = publisher.NewPublisher(auditStore,
			publisher.WithAsyncBuffer(cfg.Audit.BufferSize),
			publisher.WithLogger(log),
		)
		deps.onClose(func() error {
			pub.Close()
			if dropped := pub.Dropped(); dropped > 0 {
				log.Warn("audit events dropped during run", "dropped", dropped)
			}
			return nil
		})
	}

	if !cfg.Auth.Required && cfg.Auth.JWTSigningKey == config.DevSigningKey {
		log.Warn("JWT_SIGNING_KEY not set; using the development key")
	}
	if cfg.Audit.FingerprintKey == "" {
		log.Warn("AUDIT_FINGERPRINT_KEY not set; audit fingerprints are unkeyed")
	}
	fingerprinter, err := audit.NewFingerprinter([]byte(cfg.Audit.FingerprintKey))
	if err != nil {
		return fmt.Errorf("audit fingerprint key: %w", err)
	}

	serviceOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(ibanmetrics.New()),
		service.WithFingerprinter(fingerprinter),
		service.WithWorkers(cfg.Workers),
		service.WithMaxBatch(cfg.MaxBatch),
	}
	if pub != nil {
		serviceOpts = append(serviceOpts, service.WithAuditPublisher(pub))
	}
	svc := service.New(iban.Default(), country.Default(), serviceOpts...)

	limiter, err := buildRateLimiter(ctx, cfg, log, pub, deps)
	if err != nil {
		return err
	}

	trusted, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	routerDeps := httptransport.Deps{
		Logger:       log,
		IBAN:         ibanhandler.New(svc, log),
		Metrics:      metrics.New(),
		JWTValidator: jwttoken.NewJWTServiceAdapter(tokens),
		AuthRequired: cfg.Auth.Required,
		RateLimiter:  limiter,
		AdminToken:   cfg.Auth.AdminToken,
		HealthChecks: deps.healthChecks,

		TrustedProxies: trusted,
	}
	if pub != nil && cfg.Auth.AdminToken != "" {
		routerDeps.Admin = admin.New(pub, log)
	}

	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(routerDeps))

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting ibancheck",
			"addr", cfg.Addr,
			"audit_backend", cfg.Audit.Backend,
			"auth_required", cfg.Auth.Required,
			"ratelimit_enabled", cfg.RateLimit.Enabled,
			"countries", country.Len(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func buildAuditStore(ctx context.Context, cfg config.AuditConfig, log *slog.Logger, deps *infra) (audit.Store, error) {
	switch cfg.Backend {
	case config.AuditBackendNone:
		return nil, nil
	case config.AuditBackendPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		deps.onClose(db.Close)
		deps.healthChecks["postgres"] = db.PingContext

		store := pgstore.New(db)
		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate audit store: %w", err)
		}
		log.Info("audit events persisted to postgres")
		return store, nil
	case config.AuditBackendKafka:
		client, err := platformkafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		deps.onClose(func() error {
			client.Close()
			return nil
		})
		deps.healthChecks["kafka"] = client.Ping
		if err := platformkafka.EnsureTopic(ctx, client, cfg.KafkaTopic); err != nil {
			return nil, err
		}
		log.Info("audit events streamed to kafka", "topic", cfg.KafkaTopic)
		return kafkastore.New(client, cfg.KafkaTopic, 500), nil
	default:
		return memory.NewInMemoryStore(), nil
	}
}

func buildRateLimiter(ctx context.Context, cfg config.Server, log *slog.Logger, pub *publisher.Publisher, deps *infra) (*ratelimitmw.Middleware, error) {
	if !cfg.RateLimit.Enabled {
		log.Info("rate limiting disabled")
		return nil, nil
	}

	opts := []ratelimitmw.Option{
		ratelimitmw.WithMetrics(ratelimitmetrics.New()),
	}
	if pub != nil {
		opts = append(opts, ratelimitmw.WithAuditPublisher(pub))
	}

	var store ratelimitmw.BucketStore = bucket.NewInMemoryBucketStore()
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client != nil {
		deps.onClose(client.Close)
		deps.healthChecks["redis"] = client.Health
		opts = append(opts, ratelimitmw.WithFallback(store))
		store = bucket.NewRedis(client)
		log.Info("rate limiting backed by redis")
	}

	return ratelimitmw.New(store, cfg.RateLimit.Requests, cfg.RateLimit.Window, log, opts...), nil
}
