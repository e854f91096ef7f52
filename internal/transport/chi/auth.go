package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/moviesearch/internal/logger"
)

// apiKeyHeader is accepted alongside "Authorization: Bearer" for clients that cannot set bearer tokens.
const apiKeyHeader = "X-API-Key"

// Probes stay open so orchestrators and scrapers need no credentials.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// keyring compares a presented token against every configured key in constant time.
type keyring [][]byte

func newKeyring(keys []string) keyring {
	ring := make(keyring, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			ring = append(ring, []byte(k))
		}
	}
	return ring
}

func (k keyring) allows(token string) bool {
	match := 0
	for _, key := range k {
		match |= subtle.ConstantTimeCompare(key, []byte(token))
	}
	return match == 1
}

// presentedKey extracts the caller's key and a rejection reason when there is none.
func presentedKey(r *http.Request) (string, string) {
	if v := r.Header.Get(apiKeyHeader); v != "" {
		return v, ""
	}
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", "missing api key"
	}
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return "", "authorization header must use Bearer scheme"
	}
	return token, ""
}

// APIKeyAuth rejects requests that do not carry one of keys. With no usable
// keys configured the API is open and the middleware is a pass-through.
func APIKeyAuth(keys []string) func(http.Handler) http.Handler {
	ring := newKeyring(keys)

	return func(next http.Handler) http.Handler {
		if len(ring) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, reason := presentedKey(r)
			if reason == "" && !ring.allows(token) {
				reason = "invalid api key"
			}
			if reason != "" {
				logpkg.FromContext(r.Context()).Debug("request rejected", zap.String("reason", reason))
				w.Header().Set("WWW-Authenticate", `Bearer realm="moviesearch"`)
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, reason)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
