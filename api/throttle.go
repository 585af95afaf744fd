package api

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const minThrottleIdleTimeout = 10 * time.Minute

// throttle keeps one token bucket per client. Clients idle for longer than
// idleTimeout are forgotten; idleTimeout is at least the time to refill a
// full bucket, so forgetting a client never hands it extra tokens.
type throttle struct {
	mu          sync.Mutex
	clients     map[string]*throttledClient
	rate        rate.Limit
	burst       int
	idleTimeout time.Duration
	lastSweep   time.Time
	now         func() time.Time
}

type throttledClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newThrottle returns nil when requestsPerSecond is not positive, which
// disables throttling.
func newThrottle(requestsPerSecond float64, burst int) *throttle {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = int(math.Ceil(requestsPerSecond))
	}

	refill := time.Duration(float64(burst) / requestsPerSecond * float64(time.Second))

	return &throttle{
		clients:     make(map[string]*throttledClient),
		rate:        rate.Limit(requestsPerSecond),
		burst:       burst,
		idleTimeout: max(minThrottleIdleTimeout, refill),
		lastSweep:   time.Now(),
		now:         time.Now,
	}
}

func (t *throttle) allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.evictIdle(now)

	client, ok := t.clients[key]
	if !ok {
		client = &throttledClient{limiter: rate.NewLimiter(t.rate, t.burst)}
		t.clients[key] = client
	}
	client.lastSeen = now
	return client.limiter.AllowN(now, 1)
}

// evictIdle sweeps at most once per idleTimeout.
func (t *throttle) evictIdle(now time.Time) {
	if now.Sub(t.lastSweep) < t.idleTimeout {
		return
	}
	t.lastSweep = now

	for key, client := range t.clients {
		if now.Sub(client.lastSeen) >= t.idleTimeout {
			delete(t.clients, key)
		}
	}
}
