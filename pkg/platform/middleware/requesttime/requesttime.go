// Package requesttime pins one clock reading per request, so every audit
// event emitted for a batch carries the same timestamp.
package requesttime

import (
	"net/http"
	"time"

	"ibancheck/pkg/requestcontext"
)

// Middleware stores the UTC arrival time; read it back with requestcontext.Now.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(requestcontext.WithTime(r.Context(), time.Now().UTC())))
	})
}
