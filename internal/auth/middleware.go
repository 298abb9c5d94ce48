// Package auth provides HTTP middleware for bearer token authentication of
// the Streamable HTTP MCP endpoint.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

const bearerPrefix = "Bearer "

// NewAuthMiddleware returns an HTTP middleware that enforces bearer token
// authentication. If token is empty, authentication is disabled and every
// request passes through.
//
// When enabled, the request must carry exactly
//
//	Authorization: Bearer <token>
//
// with a case-sensitive prefix and a single space. Anything else gets a 401
// and the next handler is never called. Rejections are logged at warn level
// without the presented credential.
func NewAuthMiddleware(token string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !validBearer(r.Header.Get("Authorization"), token) {
				logger.Warn().
					Str("remote_addr", r.RemoteAddr).
					Str("path", r.URL.Path).
					Msg("rejected unauthenticated request")
				w.Header().Set("WWW-Authenticate", `Bearer realm="docker-manager-mcp"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// validBearer reports whether header is "Bearer <want>". The token comparison
// runs in constant time.
func validBearer(header, want string) bool {
	if !strings.HasPrefix(header, bearerPrefix) {
		return false
	}
	provided := header[len(bearerPrefix):]
	if provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(want)) == 1
}
