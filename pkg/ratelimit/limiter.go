// Package ratelimit throttles how often one caller may trigger ingestion or
// search. It keeps a fixed window counter per identity.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultMaxRequests = 10
	DefaultWindow      = time.Minute
)

// Decision is the outcome of one Check.
type Decision struct {
	Allowed   bool
	Remaining int
	// ResetAfter is the time left until the caller's window restarts.
	ResetAfter time.Duration
}

type entry struct {
	count     int
	lastReset time.Time
}

// Limiter is safe for concurrent use. Expired windows are reset lazily on
// Check; Sweep drops identities idle for more than two windows.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	max     int
	window  time.Duration
	now     func() time.Time
}

// New creates a limiter allowing maxRequests requests per window per identity.
func New(maxRequests int, window time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		entries: make(map[string]*entry),
		max:     maxRequests,
		window:  window,
		now:     time.Now,
	}
}

// Limit returns the number of requests allowed per window.
func (l *Limiter) Limit() int { return l.max }

// Window returns the window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Check counts one request for id.
func (l *Limiter) Check(id string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[id]
	if !ok || now.Sub(e.lastReset) > l.window {
		e = &entry{lastReset: now}
		l.entries[id] = e
	}

	resetAfter := l.window - now.Sub(e.lastReset)
	if e.count >= l.max {
		return Decision{Allowed: false, Remaining: 0, ResetAfter: resetAfter}
	}
	e.count++
	return Decision{Allowed: true, Remaining: l.max - e.count, ResetAfter: resetAfter}
}

// Sweep removes identities whose window started more than two windows ago
// and returns how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for id, e := range l.entries {
		if now.Sub(e.lastReset) > 2*l.window {
			delete(l.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps once per window until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
