package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	httpErrors "micronation/pkg/http-errors"
	"micronation/pkg/requestcontext"
)

// Recovery converts handler panics into a generic 500 response so one bad
// request cannot take the process down.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "panic recovered",
						"request_id", requestcontext.RequestID(r.Context()),
						"panic", rec,
						"stack", string(debug.Stack()),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": string(httpErrors.CodeInternal),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
