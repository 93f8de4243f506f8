package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/centsible/centsible-go/internal/metrics"
)

// errMiss distinguishes a clean miss from a backend failure inside the
// breaker; misses must not count as failures.
var errMiss = errors.New("cache miss")

// Layered fronts a backend Store with a circuit breaker and an
// in-process fallback tier. Reads degrade to the fallback when the
// backend fails or the circuit is open, writes mirror to the fallback
// on backend failure, and invalidation always hits both tiers. A
// Layered store never fails a request over a cache problem: degraded
// reads come back as misses.
type Layered struct {
	backend  Store
	fallback Store
	breaker  *gobreaker.CircuitBreaker[[]byte]
	logger   *slog.Logger
}

// NewLayered wires backend behind a circuit breaker, with fallback as
// the degraded tier. The circuit opens after five consecutive backend
// failures and probes again after thirty seconds.
func NewLayered(backend, fallback Store, logger *slog.Logger) *Layered {
	l := &Layered{backend: backend, fallback: fallback, logger: logger}

	l.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "cache-backend",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errMiss)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache backend circuit state changed",
				"breaker", name, "from", from.String(), "to", to.String())
			metrics.CacheBackendState.Set(breakerStateValue(to))
		},
	})

	return l
}

func (l *Layered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := l.breaker.Execute(func() ([]byte, error) {
		v, ok, err := l.backend.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errMiss
		}
		return v, nil
	})
	switch {
	case err == nil:
		metrics.CacheHits.WithLabelValues("backend").Inc()
		return value, true, nil
	case errors.Is(err, errMiss):
		metrics.CacheMisses.Inc()
		return nil, false, nil
	}

	l.logger.Debug("cache backend read failed, trying fallback", "key", key, "error", err)

	v, ok, ferr := l.fallback.Get(ctx, key)
	if ferr != nil || !ok {
		metrics.CacheMisses.Inc()
		return nil, false, nil
	}
	metrics.CacheHits.WithLabelValues("fallback").Inc()
	metrics.CacheFallbacks.Inc()
	return v, true, nil
}

func (l *Layered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := l.breaker.Execute(func() ([]byte, error) {
		return nil, l.backend.Set(ctx, key, value, ttl)
	})
	if err == nil {
		return nil
	}

	l.logger.Warn("cache backend write failed, mirroring to fallback",
		"key", key, "error", err)
	return l.fallback.Set(ctx, key, value, ttl)
}

func (l *Layered) Invalidate(ctx context.Context, prefix string) error {
	_, err := l.breaker.Execute(func() ([]byte, error) {
		return nil, l.backend.Invalidate(ctx, prefix)
	})
	if err != nil {
		// Entries the backend still holds expire with their TTL.
		l.logger.Warn("cache backend invalidation failed",
			"prefix", prefix, "error", err)
	}
	return l.fallback.Invalidate(ctx, prefix)
}

func (l *Layered) Close() error {
	return errors.Join(l.backend.Close(), l.fallback.Close())
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
