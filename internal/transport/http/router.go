package httptransport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"crm/internal/platform/metrics"
	"crm/pkg/platform/httputil"
	"crm/pkg/platform/middleware/metadata"
	request "crm/pkg/platform/middleware/request"
)

// RouteRegistrar is implemented by feature handlers that own a route subtree.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Config carries the router settings taken from the server config.
type Config struct {
	Port      string
	StaticDir string
}

// NewRouter wires the root endpoints, static files and every feature handler.
// Static files are matched before API routes; metrics may be nil.
func NewRouter(cfg Config, logger *slog.Logger, m *metrics.Metrics, health HealthChecker, handlers ...RouteRegistrar) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(metadata.ClientMetadata)
	if cfg.StaticDir != "" {
		r.Use(Static(cfg.StaticDir))
	}

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, "CRM server is running on port %s", cfg.Port)
	})
	r.Get("/healthz", healthHandler(health, logger))
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func healthHandler(health HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := health.Health(ctx); err != nil {
			logger.WarnContext(ctx, "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: err.Error()})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
