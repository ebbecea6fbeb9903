// Package store provides the lookup result cache. Stores enforce retention
// only; the orchestrator decides freshness and revalidation.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"domainlens/internal/lookup/models"
	"domainlens/pkg/platform/sentinel"
)

type memoryEntry struct {
	entry    models.CacheEntry
	storedAt time.Time
}

// InMemoryStore is a process-local cache for single-node deployments and
// tests. Entries past retention are evicted lazily on access.
type InMemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	retention time.Duration
	now       func() time.Time
}

// InMemoryOption configures an InMemoryStore.
type InMemoryOption func(*InMemoryStore)

// WithClock overrides the retention clock for tests.
func WithClock(now func() time.Time) InMemoryOption {
	return func(s *InMemoryStore) { s.now = now }
}

// NewInMemoryStore builds a store that retains entries for the given window.
func NewInMemoryStore(retention time.Duration, opts ...InMemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		entries:   make(map[string]memoryEntry),
		retention: retention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the entry for a domain or sentinel.ErrNotFound.
func (s *InMemoryStore) Get(_ context.Context, domain string) (*models.CacheEntry, error) {
	s.mu.RLock()
	me, ok := s.entries[domain]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no cache entry for %s: %w", domain, sentinel.ErrNotFound)
	}
	if s.now().Sub(me.storedAt) > s.retention {
		s.mu.Lock()
		if cur, still := s.entries[domain]; still && cur.storedAt.Equal(me.storedAt) {
			delete(s.entries, domain)
		}
		s.mu.Unlock()
		return nil, fmt.Errorf("cache entry for %s past retention: %w", domain, sentinel.ErrNotFound)
	}
	entry := me.entry
	return &entry, nil
}

// Set stores an entry, replacing any previous one.
func (s *InMemoryStore) Set(_ context.Context, domain string, entry *models.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[domain] = memoryEntry{entry: *entry, storedAt: s.now()}
	return nil
}

// Delete removes an entry if present.
func (s *InMemoryStore) Delete(_ context.Context, domain string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, domain)
	return nil
}
