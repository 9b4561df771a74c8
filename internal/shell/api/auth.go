package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// AuthHeader carries the shared secret on authenticated requests.
const AuthHeader = "Authorization"

// SharedSecretAuth rejects requests whose bearer token does not match the
// configured secret. Comparison is constant-time.
func SharedSecretAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get(AuthHeader), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "invalid or missing bearer token",
					Code:  "unauthorized",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
