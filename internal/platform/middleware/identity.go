package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	httpErrors "micronation/pkg/http-errors"
	"micronation/pkg/requestcontext"
)

// identityHeader carries the user ID established by the upstream gateway.
// Authenticating that identity (sessions, tokens) happens before requests
// reach this service; here it is a trusted input.
const identityHeader = "X-User-ID"

// RequireIdentity rejects requests without an upstream-established user
// identity and injects the user ID into the request context for handlers.
func RequireIdentity(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(identityHeader)
			if err := uuid.Validate(userID); err != nil {
				logger.WarnContext(r.Context(), "request without valid identity",
					"path", r.URL.Path,
				)
				herr := httpErrors.New(httpErrors.CodeNoIdentity, "no authenticated identity")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(httpErrors.ToHTTPStatus(herr.Code))
				_ = json.NewEncoder(w).Encode(map[string]string{"error": string(herr.Code)})
				return
			}

			ctx := requestcontext.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
