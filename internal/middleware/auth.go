package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/models"
)

var publicPaths = map[string]bool{
	"/":       true,
	"/health": true,
}

// Auth requires a configured API key on every non-public path. Comparison is
// constant time per candidate key.
func Auth(apiKeys []string, headerName string) func(http.Handler) http.Handler {
	keys := make([]string, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, k)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(headerName)
			if key == "" {
				models.WriteError(w, http.StatusUnauthorized, "API key required")
				return
			}
			for _, k := range keys {
				if subtle.ConstantTimeCompare([]byte(key), []byte(k)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}
			models.WriteError(w, http.StatusForbidden, "invalid API key")
		})
	}
}
