package ratelimit

import (
	"sync"
	"time"

	"github.com/marekkolman/rates-engine/pkg/utils/logger"
)

// TokenBucket is a token-bucket rate limiter: tokens refill continuously at
// rate per second up to burst, and each allowed call consumes one.
type TokenBucket struct {
	rate       float64
	burst      float64
	tokens     float64
	lastRefill time.Time
	mutex      sync.Mutex
}

// NewTokenBucket creates a limiter allowing rate requests per second with
// the given burst capacity.
func NewTokenBucket(rate float64, burst int) *TokenBucket {
	if rate <= 0 {
		rate = 1.0
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucket{
		rate:       rate,
		burst:      float64(burst),
		tokens:     float64(burst),
		lastRefill: time.Now(),
	}
}

// Allow reports whether one request may proceed now.
func (tb *TokenBucket) Allow() bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	now := time.Now()
	tb.tokens += now.Sub(tb.lastRefill).Seconds() * tb.rate
	if tb.tokens > tb.burst {
		tb.tokens = tb.burst
	}
	tb.lastRefill = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// ClientLimiter maintains a token bucket per client key, pruning buckets
// that have been idle for staleAfter.
type ClientLimiter struct {
	rate       float64
	burst      int
	staleAfter time.Duration

	mutex   sync.Mutex
	clients map[string]*clientBucket
	log     *logger.Logger
}

type clientBucket struct {
	bucket   *TokenBucket
	lastSeen time.Time
}

// NewClientLimiter creates a per-client limiter with the given rate and
// burst per client.
func NewClientLimiter(rate float64, burst int) *ClientLimiter {
	cl := &ClientLimiter{
		rate:       rate,
		burst:      burst,
		staleAfter: 10 * time.Minute,
		clients:    make(map[string]*clientBucket),
		log:        logger.GetLogger("ratelimit.client"),
	}
	cl.log.Infof("Client rate limiter created with rate=%.2f/s, burst=%d", rate, burst)
	return cl
}

// Allow reports whether the client identified by key may proceed now.
func (cl *ClientLimiter) Allow(key string) bool {
	cl.mutex.Lock()
	cb, ok := cl.clients[key]
	if !ok {
		cb = &clientBucket{bucket: NewTokenBucket(cl.rate, cl.burst)}
		cl.clients[key] = cb
		if len(cl.clients)%256 == 0 {
			cl.prune()
		}
	}
	cb.lastSeen = time.Now()
	cl.mutex.Unlock()

	return cb.bucket.Allow()
}

// prune drops idle buckets; the caller holds the mutex.
func (cl *ClientLimiter) prune() {
	cutoff := time.Now().Add(-cl.staleAfter)
	for key, cb := range cl.clients {
		if cb.lastSeen.Before(cutoff) {
			delete(cl.clients, key)
		}
	}
}
