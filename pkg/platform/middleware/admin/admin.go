// Package admin guards operator endpoints such as the audit tail.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "ibancheck/pkg/domain-errors"
	"ibancheck/pkg/platform/httputil"
	"ibancheck/pkg/requestcontext"
)

// TokenHeader carries the operator token configured as ADMIN_API_TOKEN.
const TokenHeader = "X-Admin-Token"

// RequireAdminToken rejects requests whose TokenHeader does not equal
// expected. With an empty expected token every request is rejected.
func RequireAdminToken(expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	want := []byte(expected)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(want) == 0 || subtle.ConstantTimeCompare([]byte(r.Header.Get(TokenHeader)), want) != 1 {
				logger.WarnContext(r.Context(), "admin request rejected",
					"request_id", requestcontext.RequestID(r.Context()),
					"path", r.URL.Path,
					"client_ip", requestcontext.ClientIP(r.Context()),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
