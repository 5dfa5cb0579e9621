package middleware

import (
	"log/slog"
	"net/http"

	"github.com/nicofzzn/ecommerce/pkg/logger"
)

// RequestLogger stores a request-scoped logger (correlation_id, user_id,
// trace_id, span_id) in the context for logger.FromContext.
//
// Mount after RequestLogging and Tracing. Routes behind Auth get a second,
// user-enriched logger via the same middleware.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if id := UserIDFromContext(ctx); id != "" {
				ctx = logger.WithUserID(ctx, id)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
