// internal/middleware/logging.go
//
// Request logging.
//
// Every request gets a child logger carrying its chi request id, stored in
// the context with logger.WithContext so handlers and the submission
// coordinator log under the same id.  When the handler returns, one INFO
// line records method, path, status, duration, and client IP.

package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/formrelay/internal/logger"
	"github.com/yanizio/formrelay/internal/requestinfo"
)

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (sr *statusRecorder) Unwrap() http.ResponseWriter { return sr.ResponseWriter }

// RequestLogger returns middleware that logs each request through base.
func RequestLogger(base *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := chimw.GetReqID(r.Context())

			l := base.With("request_id", reqID)
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r.WithContext(logger.WithContext(r.Context(), l)))

			l.Infow("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sr.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"ip", requestinfo.ClientIP(r.Context()),
			)
		})
	}
}
