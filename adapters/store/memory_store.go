package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/webx403/webx403-go/ports"
)

const (
	// DefaultCapacity bounds the number of live reservations. At the
	// default challenge lifetime this covers hundreds of logins per
	// second before eviction can bite.
	DefaultCapacity = 65536

	sweepInterval = time.Minute
)

// MemoryStore is a single-process implementation of the ReplayStore
// interface backed by a bounded LRU cache. Expired reservations are
// ignored on lookup and reclaimed by a background sweeper, so memory
// stays bounded even without traffic to individual keys.
type MemoryStore struct {
	mu   sync.Mutex
	seen *lru.Cache[string, time.Time]
	done chan struct{}
	once sync.Once
}

// NewMemoryStore creates a new in-memory replay store holding at most
// capacity reservations. A non-positive capacity selects DefaultCapacity.
func NewMemoryStore(capacity int) (*MemoryStore, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	seen, err := lru.New[string, time.Time](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation cache: %w", err)
	}
	s := &MemoryStore{
		seen: seen,
		done: make(chan struct{}),
	}
	go s.sweep()
	return s, nil
}

// CheckAndReserve reserves key for ttl unless a live reservation exists.
// The check and the reservation happen under one lock, so concurrent
// calls for the same key see ReplayFresh exactly once.
func (s *MemoryStore) CheckAndReserve(ctx context.Context, key string, ttl time.Duration) (ports.ReplayOutcome, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, ok := s.seen.Get(key); ok && now.Before(expiry) {
		return ports.ReplayAlreadyUsed, nil
	}
	s.seen.Add(key, now.Add(ttl))
	return ports.ReplayFresh, nil
}

// Close stops the background sweeper. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.once.Do(func() {
		close(s.done)
	})
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()

			s.mu.Lock()
			for _, key := range s.seen.Keys() {
				if expiry, ok := s.seen.Peek(key); ok && now.After(expiry) {
					s.seen.Remove(key)
				}
			}
			s.mu.Unlock()
		}
	}
}
