package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/DanielPopoola/payment-intake/internal/interfaces/rest"
)

// Recovery turns a handler panic into a 500 envelope. A response that was
// already started is left alone and only logged.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				logger.Error("handler panicked",
					"method", r.Method,
					"path", r.URL.Path,
					"response_started", rec.status != 0,
					"panic", v,
					"stack", string(debug.Stack()),
				)
				if rec.status != 0 {
					return
				}
				rest.WriteErrorResponse(w, rest.NewErrorResponse(
					http.StatusInternalServerError,
					"An unexpected error occurred",
					r.URL.Path,
				))
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
