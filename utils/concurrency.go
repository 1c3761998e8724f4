package utils

import (
	"context"
	"sync"
	"time"
)

// RateGate spaces calls to a shared upstream at least one interval
// apart. The geocoder uses it to stay inside the Nominatim usage
// policy of one request per second. A zero interval disables the gate.
type RateGate struct {
	interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

// NewRateGate creates a RateGate with the given minimum interval.
func NewRateGate(interval time.Duration) *RateGate {
	return &RateGate{interval: interval}
}

// Wait blocks until the caller may proceed or ctx is done. Concurrent
// callers each reserve their own slot, so two requests arriving
// together still go out one interval apart.
func (g *RateGate) Wait(ctx context.Context) error {
	if g.interval <= 0 {
		return ctx.Err()
	}

	g.mu.Lock()
	now := time.Now()
	next := g.last.Add(g.interval)
	var sleep time.Duration
	if next.After(now) {
		sleep = next.Sub(now)
		g.last = next
	} else {
		g.last = now
	}
	g.mu.Unlock()

	if sleep <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(sleep)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// URLSet is a thread-safe set of listing URLs already collected during
// a search, so the fallback strategy cannot re-add offers the primary
// strategy saw.
type URLSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewURLSet creates an empty URLSet.
func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]struct{})}
}

// Add returns true if the URL was newly added, false if already present.
func (s *URLSet) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[url]; exists {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// Contains returns true if the URL has already been collected.
func (s *URLSet) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[url]
	return exists
}

// Size returns the number of unique URLs tracked.
func (s *URLSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
