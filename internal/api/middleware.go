// Package api implements the admin and public REST API using chi.
package api

import (
	"net/http"
	"strings"
)

// Gate validates a bearer credential; it answers admit or deny and nothing
// else. The middleware consults it once per request, before any store
// operation runs.
type Gate interface {
	Validate(credential string) bool
}

// RequireAuth returns middleware enforcing Bearer credentials through the
// gate. With enabled false all requests pass (local development mode).
func RequireAuth(enabled bool, gate Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") || !gate.Validate(strings.TrimPrefix(header, "Bearer ")) {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
