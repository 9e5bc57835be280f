package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	dErrors "ibancheck/pkg/domain-errors"
	"ibancheck/pkg/platform/audit"
	"ibancheck/pkg/platform/httputil"
	"ibancheck/pkg/platform/sentinel"
	"ibancheck/pkg/requestcontext"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditLister reads back recent audit events.
type AuditLister interface {
	List(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler serves operator endpoints.
type Handler struct {
	audit  AuditLister
	logger *slog.Logger
}

func New(audit AuditLister, logger *slog.Logger) *Handler {
	return &Handler{audit: audit, logger: logger}
}

// Register mounts admin endpoints on the router. Callers are expected to
// guard the router with the admin token middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/audit/recent", h.HandleRecentAudit)
}

// HandleRecentAudit handles GET /admin/audit/recent?limit=N.
func (h *Handler) HandleRecentAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.audit.List(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", requestID,
			"error", err,
		)
		if errors.Is(err, sentinel.ErrUnavailable) {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "audit store unavailable"))
			return
		}
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromEvents(events))
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultAuditLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer")
	}
	return min(n, maxAuditLimit), nil
}
