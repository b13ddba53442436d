// internal/acl/middleware.go
//
// Chi middleware that guards the admin read-back routes.
//
// Context
// -------
// formrelay has no user accounts.  Operators reach the admin endpoints with
// a single shared bearer token taken from `admin.token` (usually a vault:
// reference).  When the token is empty the routes stay open, which matches
// deployments that sit behind a private network or an auth proxy.
//
// Notes
// -----
// • Tokens are compared in constant time.
// • Failures are logged at WARN with the client IP, never the presented token.

package acl

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/yanizio/formrelay/internal/logger"
	"github.com/yanizio/formrelay/internal/requestinfo"
)

const unauthorizedBody = `{"success":false,"error":"Unauthorized"}` + "\n"

// RequireToken rejects requests whose Authorization header does not carry
// "Bearer <token>".  An empty token disables the check.
func RequireToken(token string) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		if len(want) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := bearer(r.Header.Get("Authorization"))
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				logger.FromContext(r.Context()).Warnw("admin token rejected",
					"path", r.URL.Path,
					"ip", requestinfo.ClientIP(r.Context()),
					"present", ok,
				)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(unauthorizedBody))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearer extracts the credentials from an "Authorization: Bearer x" value.
func bearer(h string) (string, bool) {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
