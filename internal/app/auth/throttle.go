package auth

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTrackedEmails caps the number of buckets held at once.
const (
	maxTrackedEmails = 4096
	minSweep         = 64
)

// loginThrottle keeps one token bucket per login email.
// Buckets that have refilled carry no state and are swept on access.
type loginThrottle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	sweepAt  int
	max      int
}

func newLoginThrottle(perMinute, burst int) *loginThrottle {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &loginThrottle{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		sweepAt:  minSweep,
		max:      maxTrackedEmails,
	}
}

// allow consumes one attempt for email at now. A nil throttle allows everything.
func (t *loginThrottle) allow(email string, now time.Time) bool {
	if t == nil {
		return true
	}
	key := strings.ToLower(strings.TrimSpace(email))
	t.mu.Lock()
	l, ok := t.limiters[key]
	if !ok {
		if len(t.limiters) >= t.sweepAt {
			t.sweep(now)
		}
		l = rate.NewLimiter(t.limit, t.burst)
		t.limiters[key] = l
	}
	t.mu.Unlock()
	return l.AllowN(now, 1)
}

// sweep drops full buckets. At capacity it evicts arbitrary buckets down to three quarters.
// Callers hold t.mu.
func (t *loginThrottle) sweep(now time.Time) {
	full := float64(t.burst)
	for k, l := range t.limiters {
		if l.TokensAt(now) >= full {
			delete(t.limiters, k)
		}
	}
	if len(t.limiters) >= t.max {
		for k := range t.limiters {
			if len(t.limiters) <= t.max*3/4 {
				break
			}
			delete(t.limiters, k)
		}
	}
	t.sweepAt = max(minSweep, min(2*len(t.limiters), t.max))
}

func (t *loginThrottle) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.limiters)
}

// reset forgets the bucket after a successful login.
func (t *loginThrottle) reset(email string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.limiters, strings.ToLower(strings.TrimSpace(email)))
}
