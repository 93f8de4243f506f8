package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/centsible/centsible-go/internal/metrics"
)

// Metrics returns middleware that records request counts and latency
// per route pattern. Patterns like /api/v1/transactions/{id} keep the
// label cardinality bounded no matter what IDs clients send.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(r.Method, route, strconv.Itoa(ww.Status()), time.Since(start))
	})
}
