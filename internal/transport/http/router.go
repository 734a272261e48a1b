package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"micronation/internal/platform/metrics"
	"micronation/internal/platform/middleware"
	httpErrors "micronation/pkg/http-errors"
)

//go:generate mockgen -source=handlers_user.go -destination=mocks/user-mocks.go -package=mocks UserService

// NewRouter wires all public endpoints. m may be nil to disable latency
// observation in tests.
func NewRouter(users *UserHandler, logger *slog.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))
	r.Use(chimiddleware.Timeout(30 * time.Second))

	users.Register(r)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError centralizes domain error translation to HTTP responses so every
// handler produces the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	herr := httpErrors.FromDomain(err)
	writeJSON(w, httpErrors.ToHTTPStatus(herr.Code), map[string]string{
		"error": string(herr.Code),
	})
}
