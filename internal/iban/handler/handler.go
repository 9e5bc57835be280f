package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"ibancheck/internal/iban"
	"ibancheck/internal/iban/country"
	dErrors "ibancheck/pkg/domain-errors"
	"ibancheck/pkg/platform/httputil"
	"ibancheck/pkg/requestcontext"
)

// Service defines the interface for IBAN validation operations.
type Service interface {
	Validate(ctx context.Context, candidates []string) ([]iban.Verdict, error)
	ValidateOne(ctx context.Context, candidate string) (iban.Verdict, error)
	Countries() []country.Country
}

// Handler wires IBAN endpoints to the validation service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an IBAN handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts IBAN endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/iban/validate", h.HandleValidate)
	r.Get("/v1/iban/validate/{iban}", h.HandleValidateOne)
	r.Get("/v1/iban/countries", h.HandleCountries)
}

// HandleValidate handles POST /v1/iban/validate requests.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	verdicts, err := h.service.Validate(ctx, req.IBANs)
	if err != nil {
		h.logger.WarnContext(ctx, "iban batch validation failed",
			"request_id", requestID,
			"batch_size", len(req.IBANs),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "iban batch validated",
		"request_id", requestID,
		"client_id", requestcontext.ClientID(ctx),
		"batch_size", len(verdicts),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromVerdicts(verdicts))
}

// HandleValidateOne handles GET /v1/iban/validate/{iban} requests. The path
// segment is used as given after URL decoding.
func (h *Handler) HandleValidateOne(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	candidate, err := pathParam(r, "iban")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid path encoding"))
		return
	}
	verdict, err := h.service.ValidateOne(ctx, candidate)
	if err != nil {
		h.logger.WarnContext(ctx, "iban validation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, verdict)
}

// HandleCountries handles GET /v1/iban/countries requests.
func (h *Handler) HandleCountries(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, FromCountries(h.service.Countries()))
}

// pathParam returns a decoded URL parameter. chi routes on RawPath when the
// request carries escapes that differ from the default encoding, and leaves
// the parameter escaped in that case.
func pathParam(r *http.Request, key string) (string, error) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}
