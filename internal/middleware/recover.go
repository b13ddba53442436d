package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/yanizio/formrelay/internal/logger"
)

// ServerErrorBody is the JSON written for any unexpected failure.
const ServerErrorBody = `{"success":false,"error":"Unexpected server error"}` + "\n"

// Recover turns a handler panic into a logged JSON 500.  It follows chi's
// Recoverer but keeps the response body consistent with handler errors.
// http.ErrAbortHandler is re-panicked so the server can drop the connection.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.FromContext(r.Context()).Errorw("handler panic",
				"panic", rec,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(ServerErrorBody))
		}()
		next.ServeHTTP(w, r)
	})
}
