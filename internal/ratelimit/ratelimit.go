// Package ratelimit provides per-client token buckets built on
// golang.org/x/time/rate.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter hands out one token bucket per key. A bucket holds Max tokens
// and refills at Max per Window. Buckets idle for longer than Window are
// dropped by a background sweeper; call Close to stop it.
type Limiter struct {
	name   string
	max    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// ErrInvalidLimit is returned by New for a budget no bucket can honour.
var ErrInvalidLimit = errors.New("invalid rate limit")

// New starts a Limiter allowing max requests per window for each key.
// sweep is the interval between idle-bucket sweeps; zero uses window.
func New(name string, max int, window, sweep time.Duration, opts ...Option) (*Limiter, error) {
	switch {
	case max < 1:
		return nil, fmt.Errorf("%w: %s: max %d", ErrInvalidLimit, name, max)
	case window <= 0:
		return nil, fmt.Errorf("%w: %s: window %s", ErrInvalidLimit, name, window)
	case sweep < 0:
		return nil, fmt.Errorf("%w: %s: sweep %s", ErrInvalidLimit, name, sweep)
	}
	if sweep == 0 {
		sweep = window
	}
	l := &Limiter{
		name:    name,
		max:     max,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	go l.sweepLoop(sweep)
	return l, nil
}

// Name identifies the limiter in logs and metrics.
func (l *Limiter) Name() string { return l.name }

// Allow takes a token for key. When none is available it returns false
// and how long until one will be.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.max)), l.max)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, l.window
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Sweep drops buckets idle for longer than the window.
func (l *Limiter) Sweep() {
	cutoff := l.now().Add(-l.window)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

func (l *Limiter) sweepLoop(every time.Duration) {
	defer close(l.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-l.stop:
			return
		}
	}
}

// Close stops the sweeper and waits for it to exit. Safe to call twice.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stop) })
	<-l.done
}
