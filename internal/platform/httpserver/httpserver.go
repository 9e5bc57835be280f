// Package httpserver builds the *http.Server for cmd/server.
package httpserver

import (
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	// Outlives the router's per-request timeout so a timed-out batch still
	// gets its 503 written.
	writeTimeout = 35 * time.Second
	idleTimeout  = 2 * time.Minute
	maxHeader    = 64 << 10
)

func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeader,
	}
}
