package chi

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// exemptPaths bypass authentication so health checks and scrapers need no key.
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

const bearerPrefix = "Bearer "

var (
	errMissingAuth = errors.New("missing authorization header")
	errNotBearer   = errors.New("authorization header must use Bearer scheme")
	errInvalidKey  = errors.New("invalid api key")
)

// BearerAuthMiddleware returns a middleware that validates Bearer tokens.
// Empty keys are ignored; with no keys left authentication is disabled.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			if err := authorize(r.Header.Get("Authorization"), keys); err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="newsrec"`)
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, err.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func authorize(header string, keys [][]byte) error {
	if header == "" {
		return errMissingAuth
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return errNotBearer
	}
	token := []byte(header[len(bearerPrefix):])
	for _, k := range keys {
		if subtle.ConstantTimeCompare(token, k) == 1 {
			return nil
		}
	}
	return errInvalidKey
}
