package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ws-flare/ws-flare-graphql/internal/service/auth"
)

const rateLimiterSweepInterval = 5 * time.Minute

// RateLimiter counts requests per key within a fixed window.
type RateLimiter interface {
	Allow(key string, limit int, window time.Duration) rateDecision
	Close()
}

type rateDecision struct {
	allowed   bool
	count     int
	windowEnd time.Time
}

// memoryRateLimiter keeps one fixed window per key. Expired windows are
// swept periodically so idle keys do not accumulate.
type memoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string]rateDecision
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryRateLimiter returns a process-local limiter.
func NewMemoryRateLimiter() RateLimiter {
	return newMemoryRateLimiter(time.Now, rateLimiterSweepInterval)
}

func newMemoryRateLimiter(now func() time.Time, sweepEvery time.Duration) *memoryRateLimiter {
	rl := &memoryRateLimiter{
		windows: make(map[string]rateDecision),
		now:     now,
		stop:    make(chan struct{}),
	}
	if sweepEvery > 0 {
		go rl.sweepLoop(sweepEvery)
	}
	return rl
}

func (rl *memoryRateLimiter) Allow(key string, limit int, window time.Duration) rateDecision {
	if limit <= 0 {
		return rateDecision{allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	current, ok := rl.windows[key]
	if !ok || !now.Before(current.windowEnd) {
		current = rateDecision{windowEnd: now.Add(window)}
	}
	if current.count >= limit {
		current.allowed = false
		return current
	}
	current.count++
	current.allowed = true
	rl.windows[key] = current
	return current
}

func (rl *memoryRateLimiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

func (rl *memoryRateLimiter) sweep() {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, w := range rl.windows {
		if !now.Before(w.windowEnd) {
			delete(rl.windows, key)
		}
	}
}

func (rl *memoryRateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

// withRateLimit rejects requests over limit per window with 429. keyFn
// chooses the bucket; an empty key falls back to the client address.
func (r *Router) withRateLimit(route string, limit int, window time.Duration, keyFn func(*http.Request) string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if limit <= 0 || r.limiter == nil {
			next(w, req)
			return
		}
		key := keyFn(req)
		if key == "" {
			key = rateLimitKeyIP(req)
		}
		decision := r.limiter.Allow(key, limit, window)
		r.applyRateHeaders(w, limit, decision)
		if decision.allowed {
			next(w, req)
			return
		}
		if !decision.windowEnd.IsZero() {
			wait := time.Until(decision.windowEnd).Round(time.Second)
			if wait < time.Second {
				wait = time.Second
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(wait/time.Second)))
		}
		recordRateLimitHit(route, rateMetricKey(key))
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	}
}

// rateLimitKeyCaller buckets signed-in callers by user id and everyone else
// by address.
func (r *Router) rateLimitKeyCaller(req *http.Request) string {
	if id, ok := auth.FromContext(req.Context()); ok {
		return "user:" + id.UserID
	}
	return ""
}

func rateLimitKeyIP(req *http.Request) string {
	host := clientIP(req)
	if host == "" {
		host = "unknown"
	}
	return "ip:" + host
}

// rateMetricKey reduces a limiter key to its kind so metric cardinality
// stays bounded.
func rateMetricKey(key string) string {
	kind, _, found := strings.Cut(key, ":")
	if !found || kind == "" {
		return "unknown"
	}
	return kind
}

func (r *Router) applyRateHeaders(w http.ResponseWriter, limit int, decision rateDecision) {
	if limit <= 0 {
		return
	}
	remaining := limit - decision.count
	if remaining < 0 {
		remaining = 0
	}
	headers := w.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if !decision.windowEnd.IsZero() {
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.windowEnd.Unix(), 10))
	}
}
