package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// AdminAuth returns middleware that validates HTTP Basic credentials
// against the configured admin user and password.
func AdminAuth(user, pass string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser, gotPass, ok := r.BasicAuth()

			userOK := subtle.ConstantTimeCompare([]byte(gotUser), []byte(user)) == 1
			passOK := subtle.ConstantTimeCompare([]byte(gotPass), []byte(pass)) == 1

			if !ok || !userOK || !passOK {
				w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
