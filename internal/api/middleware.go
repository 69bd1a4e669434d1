// Package api implements the briefly REST API using chi.
package api

import (
	"net/http"

	"github.com/bryanpdl/briefly/internal/apperr"
	"github.com/bryanpdl/briefly/internal/identity"
)

// AuthMiddleware resolves the caller from the Authorization header and stores
// the principal in the request context. In disabled mode every request passes
// as the anonymous principal; in token mode a missing or unknown Bearer token
// is rejected with 401.
func AuthMiddleware(resolver *identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := resolver.Resolve(r.Header.Get("Authorization"))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequirePaid rejects callers without a paid plan with 402.
func RequirePaid(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := principal(r).RequirePaid(r.URL.Path); err != nil {
			writeJSON(w, http.StatusPaymentRequired, errorBody(apperr.ErrPaymentRequired.Error()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func principal(r *http.Request) identity.Principal {
	p, _ := identity.FromContext(r.Context())
	return p
}
