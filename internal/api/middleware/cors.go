package middleware

import (
	"net/http"
	"slices"
)

// CORS sets cross-origin headers. An empty origins list allows any origin;
// otherwise only listed origins are echoed back. Preflight requests are
// answered directly.
func CORS(origins []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowOrigin := "*"
		if len(origins) > 0 {
			allowOrigin = ""
			if slices.Contains(origins, origin) {
				allowOrigin = origin
				w.Header().Add("Vary", "Origin")
			}
		}

		if allowOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
