package middlewares

import (
	"net/http"

	"github.com/sameicp/assignment-monitor/internal/observability/tracing"
)

// TracingMiddleware gives every request a trace id, echoed in X-Trace-Id.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tracing.AttachTracingIntoContext(r.Context())
		if traceId, ok := ctx.Value(tracing.TraceIdKey).(string); ok {
			w.Header().Set("X-Trace-Id", traceId)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
