package authapi

import (
	"sync"
	"time"
)

// ipLimiter counts failed logins per client key over a sliding window.
// A non-positive limit disables it.
type ipLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	events  map[string][]time.Time
	sweepAt time.Time
}

func newIPLimiter(limit int, window time.Duration) *ipLimiter {
	if window <= 0 {
		window = DefaultConfig().LoginIPWindow
	}
	return &ipLimiter{
		limit:  limit,
		window: window,
		events: make(map[string][]time.Time),
	}
}

// Blocked reports whether key is over the limit at now and, if so, how
// long until its oldest counted failure leaves the window.
func (l *ipLimiter) Blocked(key string, now time.Time) (bool, time.Duration) {
	if l == nil || l.limit <= 0 || key == "" {
		return false, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ev := l.prune(key, now)
	if len(ev) < l.limit {
		return false, 0
	}
	return true, ev[0].Add(l.window).Sub(now)
}

// Record counts one failure for key at now.
func (l *ipLimiter) Record(key string, now time.Time) {
	if l == nil || l.limit <= 0 || key == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ev := l.prune(key, now)
	l.events[key] = append(ev, now)
	l.sweep(now)
}

// Len returns the number of tracked keys.
func (l *ipLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func (l *ipLimiter) prune(key string, now time.Time) []time.Time {
	ev, ok := l.events[key]
	if !ok {
		return nil
	}
	cut := now.Add(-l.window)
	dst := ev[:0]
	for _, t := range ev {
		if t.After(cut) {
			dst = append(dst, t)
		}
	}
	if len(dst) == 0 {
		delete(l.events, key)
		return nil
	}
	l.events[key] = dst
	return dst
}

// sweep drops idle keys, at most once per window.
func (l *ipLimiter) sweep(now time.Time) {
	if now.Before(l.sweepAt) {
		return
	}
	l.sweepAt = now.Add(l.window)
	for k := range l.events {
		l.prune(k, now)
	}
}
