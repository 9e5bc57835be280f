package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ibancheck/internal/admin"
	ibanhandler "ibancheck/internal/iban/handler"
	"ibancheck/internal/platform/metrics"
	ratelimitmw "ibancheck/internal/ratelimit/middleware"
	"ibancheck/pkg/platform/httputil"
	adminmw "ibancheck/pkg/platform/middleware/admin"
	authmw "ibancheck/pkg/platform/middleware/auth"
	"ibancheck/pkg/platform/middleware/metadata"
	"ibancheck/pkg/platform/middleware/requestid"
	"ibancheck/pkg/platform/middleware/requesttime"
)

const requestTimeout = 30 * time.Second

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps carries everything the router mounts. Optional fields may be nil.
type Deps struct {
	Logger  *slog.Logger
	IBAN    *ibanhandler.Handler
	Admin   *admin.Handler
	Metrics *metrics.Metrics

	// JWTValidator enables bearer authentication on the API routes.
	JWTValidator authmw.JWTValidator
	// AuthRequired rejects anonymous API calls; otherwise a token is optional.
	AuthRequired bool

	RateLimiter *ratelimitmw.Middleware
	AdminToken  string

	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies metadata.TrustedProxies

	HealthChecks map[string]HealthCheck
}

// NewRouter wires the public API, operator endpoints, health and metrics.
// Handlers delegate to domain services without embedding business logic.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata(deps.TrustedProxies))
	r.Use(chimw.Recoverer)
	r.Use(deps.Metrics.LatencyMiddleware)

	r.Get("/health", healthHandler(deps.HealthChecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(api chi.Router) {
		api.Use(chimw.Timeout(requestTimeout))
		if deps.JWTValidator != nil {
			if deps.AuthRequired {
				api.Use(authmw.RequireAuth(deps.JWTValidator, deps.Logger))
			} else {
				api.Use(authmw.OptionalAuth(deps.JWTValidator, deps.Logger))
			}
		}
		if deps.RateLimiter != nil {
			api.Use(deps.RateLimiter.RateLimit)
		}
		deps.IBAN.Register(api)
	})

	if deps.Admin != nil {
		r.Group(func(ops chi.Router) {
			ops.Use(adminmw.RequireAdminToken(deps.AdminToken, deps.Logger))
			deps.Admin.Register(ops)
		})
	}

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
