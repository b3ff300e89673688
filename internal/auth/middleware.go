package auth

import (
	"net/http"

	"github.com/aquamarinepk/aqm"
)

// RequireActor rejects requests that do not resolve to an owner or staff
// actor and stores the actor in the request context otherwise.
func RequireActor(resolver ActorResolver, logger aqm.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver == nil {
				aqm.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			actor, err := resolver.Resolve(r)
			if err != nil {
				logger.Debug("actor resolution failed", "error", err, "request_id", aqm.RequestIDFrom(r.Context()))
				aqm.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}
