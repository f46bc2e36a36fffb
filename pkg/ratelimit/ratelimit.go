// Package ratelimit implements the sliding two-bucket counter the listener
// uses to cap new connections per peer address.
package ratelimit

import (
	"time"

	"github.com/gammazero/deque"
)

type bucket struct {
	windowStart  time.Time
	previous     float64
	current      float64
	lastActivity time.Time
}

// touch is one key's activity timestamp, recorded in a FIFO sweep queue so
// cleanup only has to look at the oldest entries instead of scanning every
// tracked key.
type touch struct {
	key string
	at  time.Time
}

// Limiter is a per-key sliding window rate limiter using two buckets per
// key: the previous window's count decays linearly as the current window
// fills. It is not safe for concurrent use: the listener's accept loop is
// its sole owner.
type Limiter struct {
	window time.Duration
	limit  float64

	buckets        map[string]*bucket
	order          deque.Deque[touch]
	lastCleanup    time.Time
	cleanupStarted bool
}

// New returns a Limiter that accepts at most limit requests per key within
// any sliding window of duration window.
func New(window time.Duration, limit int) *Limiter {
	return &Limiter{
		window:  window,
		limit:   float64(limit),
		buckets: make(map[string]*bucket),
	}
}

// Enqueue reports whether a request for key arriving at now is accepted,
// advancing and evaluating that key's sliding window bucket.
func (l *Limiter) Enqueue(key string, now time.Time) bool {
	if !l.cleanupStarted {
		l.lastCleanup = now
		l.cleanupStarted = true
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{windowStart: now}
		l.buckets[key] = b
	}

	age := now.Sub(b.windowStart)
	if age >= l.window {
		if age >= 2*l.window {
			b.current = 0
		}
		b.previous = b.current
		b.current = 0
		b.windowStart = now
		age = now.Sub(b.windowStart)
	}

	weight := 1 - float64(age)/float64(l.window)
	estimate := b.previous*weight + b.current

	accepted := estimate < l.limit
	if accepted {
		b.current++
	}
	b.lastActivity = now
	l.order.PushBack(touch{key: key, at: now})

	l.cleanup(now)
	return accepted
}

// cleanup drops keys whose bucket has been idle for at least two windows,
// and runs at most once per two windows. The sweep queue is ordered oldest
// activity first, so it only has to pop entries older than the cutoff
// instead of scanning every tracked key.
func (l *Limiter) cleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < 2*l.window {
		return
	}
	l.lastCleanup = now

	cutoff := now.Add(-2 * l.window)
	for l.order.Len() > 0 {
		front := l.order.Front()
		if front.at.After(cutoff) {
			break
		}
		l.order.PopFront()
		// Only delete if this is still the bucket's most recent touch;
		// a later re-touch of the same key leaves a fresher entry further
		// back in the queue, which keeps the bucket alive.
		if b, ok := l.buckets[front.key]; ok && !b.lastActivity.After(cutoff) {
			delete(l.buckets, front.key)
		}
	}
}

// Size reports the number of keys currently tracked, exposed as the
// rate_limiter_size metric.
func (l *Limiter) Size() int {
	return len(l.buckets)
}
