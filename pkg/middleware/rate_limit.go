package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	apperrors "evcharge/pkg/errors"
	httputil "evcharge/pkg/http"
	"evcharge/pkg/logger"

	"golang.org/x/time/rate"
)

type KeyExtractor func(r *http.Request) string

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	mu       sync.Mutex
}

// RateLimiter keeps one token bucket per client key.
type RateLimiter struct {
	limiters  sync.Map
	rps       rate.Limit
	burst     int
	idleAfter time.Duration
	extractor KeyExtractor
	log       *logger.Logger
	stopCh    chan struct{}
	stopOnce  sync.Once
}

func NewRateLimiter(rps float64, burst int, extractor KeyExtractor, log *logger.Logger) *RateLimiter {
	if burst <= 0 {
		burst = 5
	}
	if extractor == nil {
		extractor = ClientKey
	}
	rl := &RateLimiter{
		rps:       rate.Limit(rps),
		burst:     burst,
		idleAfter: 10 * time.Minute,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

func (rl *RateLimiter) getLimiter(key string) *limiterEntry {
	if v, ok := rl.limiters.Load(key); ok {
		return v.(*limiterEntry)
	}
	entry := &limiterEntry{limiter: rate.NewLimiter(rl.rps, rl.burst)}
	actual, _ := rl.limiters.LoadOrStore(key, entry)
	return actual.(*limiterEntry)
}

func (rl *RateLimiter) Allow(key string) bool {
	entry := rl.getLimiter(key)
	entry.mu.Lock()
	entry.lastSeen = time.Now()
	entry.mu.Unlock()
	return entry.limiter.Allow()
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.limiters.Range(func(key, value any) bool {
				entry := value.(*limiterEntry)
				entry.mu.Lock()
				idle := time.Since(entry.lastSeen) > rl.idleAfter
				entry.mu.Unlock()
				if idle {
					rl.limiters.Delete(key)
				}
				return true
			})
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.extractor(r)
			if key != "" && !limiter.Allow(key) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFromContext(r.Context()),
					"client", key,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", "1")
				_ = httputil.WriteError(w, apperrors.New(apperrors.CodeRateLimited,
					"Rate limit exceeded", http.StatusTooManyRequests))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey identifies the caller by authenticated user, falling back to the remote IP.
func ClientKey(r *http.Request) string {
	if userID, ok := UserIDFromContext(r.Context()); ok {
		return "user:" + userID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
