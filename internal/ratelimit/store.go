package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Store keeps one token bucket per key. Keys idle for longer than the TTL
// are evicted, and the store never holds more than maxKeys buckets.
type Store struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	maxKeys int
	now     func() time.Time
	entries map[string]*entry
}

type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(rps float64, burst int, ttl time.Duration, maxKeys int, opts ...Option) *Store {
	if burst <= 0 {
		burst = 1
	}
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	s := &Store{
		limit:   rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
		maxKeys: maxKeys,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow consumes one token for key and reports whether the request may
// proceed.
func (s *Store) Allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if ok && s.ttl > 0 && now.Sub(e.lastSeen) > s.ttl {
		delete(s.entries, key)
		ok = false
	}
	if !ok {
		if len(s.entries) >= s.maxKeys {
			s.evict(now)
		}
		e = &entry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// evict drops expired keys, then the least recently seen one if the store
// is still full. Called with mu held.
func (s *Store) evict(now time.Time) {
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, e := range s.entries {
		if s.ttl > 0 && now.Sub(e.lastSeen) > s.ttl {
			delete(s.entries, k)
			continue
		}
		if oldestKey == "" || e.lastSeen.Before(oldest) {
			oldestKey, oldest = k, e.lastSeen
		}
	}
	if len(s.entries) >= s.maxKeys && oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}

// Sweep removes every expired key and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ttl <= 0 {
		return 0
	}
	now := s.now()
	dropped := 0
	for k, e := range s.entries {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.entries, k)
			dropped++
		}
	}
	return dropped
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Reset forgets every key.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
}
