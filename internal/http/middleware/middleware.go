// Package middleware holds the handler wrappers applied to the whole
// route table: request logging and panic recovery.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/priyanshgupta/tuition-admin-api/internal/utils/response"
)

// statusRecorder captures the status code a handler writes so the
// logger can report it. WriteHeader is only called once per response,
// so recording it here is safe.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the wrapped writer so http.NewResponseController can
// reach its Flush/Hijack, which the recorder does not reimplement.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Logger logs one line per request: method, path, response status and
// duration.
func Logger(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// Recover converts a handler panic into a 500 envelope instead of a
// dropped connection. The stack trace is logged always, but returned
// to the client only outside production.
func Recover(log *slog.Logger, env string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			stack := string(debug.Stack())
			log.Error("panic recovered",
				slog.String("path", r.URL.Path),
				slog.String("panic", fmt.Sprint(rec)),
				slog.String("stack", stack),
			)

			body := response.Err("Internal Server Error")
			if env != "prod" {
				body.Data = map[string]string{"stack": stack}
			}
			response.WriteJSON(w, http.StatusInternalServerError, body)
		}()

		next.ServeHTTP(w, r)
	})
}
