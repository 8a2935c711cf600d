// Package ratelimit counts hits per key in fixed windows. State lives in
// memory and is lost on restart.
package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	count int
	reset time.Time
}

type Limiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*window
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New allows at most limit hits per key in every window of length per. The first hit for a
// key opens its window.
func New(limit int, per time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		max:     limit,
		window:  per,
		now:     time.Now,
		entries: make(map[string]*window),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records a hit for key and reports whether it is within the limit,
// along with when the key's window resets.
func (l *Limiter) Allow(key string) (bool, time.Time) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.entries[key]
	if !ok || !now.Before(w.reset) {
		w = &window{reset: now.Add(l.window)}
		l.entries[key] = w
	}
	if w.count >= l.max {
		return false, w.reset
	}
	w.count++
	return true, w.reset
}

// Sweep drops every expired window and returns how many were removed.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, w := range l.entries {
		if !now.Before(w.reset) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Run sweeps expired windows every interval until stop is closed.
func (l *Limiter) Run(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
