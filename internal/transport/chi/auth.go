package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// publicPaths skip authentication so probes and scrapers need no key.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// BearerAuthMiddleware rejects requests whose Bearer token is not one of apiKeys.
// Blank keys are ignored; with no keys left the middleware is a pass-through.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, msg := bearerToken(r)
			if msg == "" && !keyMatches(keys, token) {
				msg = "invalid api key"
			}
			if msg != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="matchfeed"`)
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token, or returns a rejection message.
func bearerToken(r *http.Request) ([]byte, string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return nil, "missing authorization header"
	}
	if !strings.HasPrefix(auth, bearerPrefix) {
		return nil, "authorization header must use Bearer scheme"
	}
	return []byte(strings.TrimSpace(auth[len(bearerPrefix):])), ""
}

// keyMatches compares against every key in constant time.
func keyMatches(keys [][]byte, token []byte) bool {
	matched := 0
	for _, k := range keys {
		matched |= subtle.ConstantTimeCompare(k, token)
	}
	return matched == 1
}
