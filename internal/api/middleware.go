package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pgold-labs/staking-ledger/internal/observability/metrics"
	"github.com/pgold-labs/staking-ledger/internal/observability/tracing"
)

func (s *Server) tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tracing.InjectTraceID(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the status code written by the handler so the
// request duration histogram can label it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (s *Server) requestDurationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		startTime := time.Now()
		next.ServeHTTP(rec, r)

		// The route pattern is only resolved after routing, so the
		// histogram is labeled on the way out.
		pattern := chi.RouteContext(r.Context()).RoutePattern()
		metrics.RecordHttpRequestDuration(time.Since(startTime), r.Method, pattern, rec.status)
	})
}
