package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type loginVisitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// loginThrottle rate-limits login attempts per account with a token
// bucket per email address. It works alongside the per-IP limit on the
// auth routes: one caller hammering many accounts is caught by IP, many
// callers hammering one account is caught here.
type loginThrottle struct {
	mu       sync.Mutex
	visitors map[string]*loginVisitor
	limit    rate.Limit
	burst    int

	stop     chan struct{}
	stopOnce sync.Once
}

func newLoginThrottle(attempts int, window time.Duration) *loginThrottle {
	t := &loginThrottle{
		visitors: make(map[string]*loginVisitor),
		limit:    rate.Every(window / time.Duration(attempts)),
		burst:    attempts,
		stop:     make(chan struct{}),
	}
	go t.cleanupLoop()
	return t
}

// allow reports whether another attempt for email may proceed now.
func (t *loginThrottle) allow(email string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.visitors[email]
	if !ok {
		v = &loginVisitor{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.visitors[email] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (t *loginThrottle) close() {
	t.stopOnce.Do(func() { close(t.stop) })
}

func (t *loginThrottle) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			for email, v := range t.visitors {
				if time.Since(v.lastSeen) > 30*time.Minute {
					delete(t.visitors, email)
				}
			}
			t.mu.Unlock()
		}
	}
}
