package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Timeout gives every request a deadline that processor calls inherit.
// Handlers answer with their own error envelope when it fires. A non-positive
// budget disables the deadline.
func Timeout(budget time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if budget <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), budget)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				logger.Warn("request exceeded its deadline",
					"method", r.Method,
					"path", r.URL.Path,
					"budget_ms", budget.Milliseconds(),
				)
			}
		})
	}
}
