// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *RequestInfo.
//
/*
Context
--------
This handler sits after the CORS filter and before request logging.  For
every request it:

  1. Resolves the client IP from the first valid X-Forwarded-For entry,
     then X-Real-Ip, then `r.RemoteAddr`, else "unknown".
  2. Parses the User-Agent header.
  3. Performs a GeoLite2 lookup when a database is loaded.
  4. Stores a `*RequestInfo` value in the request context under an
     unexported key, so handlers and the submission coordinator can read
     the IP and hints without reparsing.

Notes
-----
  • All look-ups are read-only, so the middleware is safe under heavy
    concurrency.
  • X-Forwarded-For and X-Real-Ip are trusted as sent.  Deploy behind a
    proxy that overwrites them; a direct client can claim any address.
    The value is recorded and logged only, never used for access control.
*/
package requestinfo

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

/*──────────────────────────── middleware ───────────────────────────────────*/

// Enrich wraps an http.Handler, attaches *RequestInfo, and forwards.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		info := &RequestInfo{
			ClientIP:  ip,
			UA:        parseUA(r.UserAgent()),
			Geo:       lookupGeo(ip),
			Timestamp: time.Now().UTC(),
		}

		zap.S().Debugw("request info",
			"ip", info.ClientIP,
			"country", info.Geo.CountryISO,
			"browser", info.UA.Browser,
			"device", info.UA.Device,
			"bot", info.UA.IsBot,
			"path", r.URL.Path,
		)

		ctx := context.WithValue(r.Context(), ctxKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

/*──────────────────────────── client IP helper ─────────────────────────────*/

// clientIP extracts the left-most valid address from X-Forwarded-For or
// X-Real-Ip, falling back to r.RemoteAddr ("ip:port").
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return UnknownIP
}
