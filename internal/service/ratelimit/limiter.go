package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter holds one token bucket per key (provider host, API key).
type Limiter struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	every time.Duration
	burst int
}

// New allows one request per `every` per key, with the given burst.
func New(every time.Duration, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{m: make(map[string]*rate.Limiter), every: every, burst: burst}
}

// PerSecond builds a limiter from a requests-per-second budget. A
// non-positive budget disables limiting.
func PerSecond(n float64) *Limiter {
	if n <= 0 {
		return New(0, 1)
	}
	return New(time.Duration(float64(time.Second)/n), max(1, int(n)))
}

// PerMinute builds a limiter from a requests-per-minute budget.
func PerMinute(n int) *Limiter {
	if n <= 0 {
		return New(0, 1)
	}
	return New(time.Minute/time.Duration(n), max(1, n/10))
}

// Wait blocks until a token for key is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.get(key).Wait(ctx)
}

// Allow reports whether one token for key can be consumed now.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.m[key]
	if !ok {
		r := rate.Inf
		if l.every > 0 {
			r = rate.Every(l.every)
		}
		lim = rate.NewLimiter(r, l.burst)
		l.m[key] = lim
	}
	return lim
}
