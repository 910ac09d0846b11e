package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type endpoint struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter paces outbound calls, one token bucket per endpoint path.
type RateLimiter struct {
	mu        sync.Mutex
	endpoints map[string]*endpoint
	r         rate.Limit
	burst     int
	stop      chan struct{}
	once      sync.Once
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		endpoints: make(map[string]*endpoint),
		r:         rate.Limit(rps),
		burst:     burst,
		stop:      make(chan struct{}),
	}
	// drop idle buckets every minute
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-rl.stop:
				return
			case <-t.C:
				rl.mu.Lock()
				for k, e := range rl.endpoints {
					if time.Since(e.seen) > 3*time.Minute {
						delete(rl.endpoints, k)
					}
				}
				rl.mu.Unlock()
			}
		}
	}()
	return rl
}

func (rl *RateLimiter) Close() { rl.once.Do(func() { close(rl.stop) }) }

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if e, ok := rl.endpoints[key]; ok {
		e.seen = time.Now()
		return e.lim
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.endpoints[key] = &endpoint{lim: l, seen: time.Now()}
	return l
}

// RateLimit waits for a token instead of failing, so a burst of user actions
// is slowed down rather than dropped. Only the request context can abort it.
func RateLimit(rl *RateLimiter) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if err := rl.get(r.Method + " " + r.URL.Path).Wait(r.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(r)
		})
	}
}
