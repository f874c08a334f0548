package httpserver

import (
	"net/http"
	"time"

	"crm/internal/platform/config"
)

// New builds an HTTP server with sane defaults for this project. Write and
// idle timeouts leave headroom above the per-request handler timeout.
func New(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
