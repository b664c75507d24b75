package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// idleRefills is how many full refill periods an email's limiter survives
// without attempts. By then its bucket is full again.
const idleRefills = 3

const minIdleTTL = time.Second

// loginThrottle keeps a token bucket per email address. Buckets live in a
// TTL cache so idle addresses are dropped.
type loginThrottle struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters *cache.Cache
}

func newLoginThrottle(limit rate.Limit, burst int) *loginThrottle {
	if burst < 1 {
		burst = 1
	}
	return newLoginThrottleTTL(limit, burst, idleTTL(limit, burst))
}

func newLoginThrottleTTL(limit rate.Limit, burst int, ttl time.Duration) *loginThrottle {
	return &loginThrottle{
		limit:    limit,
		burst:    burst,
		limiters: cache.New(ttl, ttl),
	}
}

// idleTTL is idleRefills times the time an empty bucket takes to refill.
func idleTTL(limit rate.Limit, burst int) time.Duration {
	if limit == rate.Inf || limit <= 0 {
		return minIdleTTL
	}
	refill := time.Duration(float64(burst) / float64(limit) * float64(time.Second))
	if ttl := idleRefills * refill; ttl > minIdleTTL {
		return ttl
	}
	return minIdleTTL
}

func (t *loginThrottle) allow(email string) bool {
	key := strings.ToLower(email)

	t.mu.Lock()
	var l *rate.Limiter
	if v, ok := t.limiters.Get(key); ok {
		l = v.(*rate.Limiter)
	} else {
		l = rate.NewLimiter(t.limit, t.burst)
	}
	t.limiters.SetDefault(key, l)
	t.mu.Unlock()

	return l.Allow()
}
