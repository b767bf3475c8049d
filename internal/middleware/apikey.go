package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader carries the public anonymous key every client presents.
const APIKeyHeader = "apikey"

// RequireAPIKey rejects requests whose apikey header does not match key.
// The health endpoint is exempt.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}
			got := r.Header.Get(APIKeyHeader)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				writeError(w, http.StatusUnauthorized, "Invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
