// Package middleware holds the HTTP middleware applied to every API route.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/synaptic/study-engine/internal/api/shared"
	"github.com/synaptic/study-engine/internal/platform/logger"
)

// TraceMiddleware adds a trace ID to the request context and a request
// logger carrying it.
func TraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			w.Header().Set("X-Trace-ID", traceID)
			log := base.With(slog.String("trace_id", traceID))
			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(logger.WithLogger(ctx, log)))
		})
	}
}
