package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/centsible/centsible-go/internal/metrics"
)

// RateLimit returns middleware that enforces a fixed-window request
// limit. scope labels the limit in metrics ("auth", "api",
// "analytics"); keyFn picks the counting key. Rejections carry a
// Retry-After hint of one full window.
func RateLimit(requests int, window time.Duration, scope string, keyFn httprate.KeyFunc) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(keyFn),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
			w.Header().Set("Retry-After", retryAfter)
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
		}),
	)
}

// KeyByUser counts by authenticated user so clients behind a shared
// NAT do not exhaust each other's budget. Unauthenticated requests
// fall back to the client IP.
func KeyByUser(r *http.Request) (string, error) {
	if p, ok := PrincipalFromContext(r.Context()); ok {
		return "user:" + p.UserID, nil
	}
	return httprate.KeyByIP(r)
}
