// Package cache implements the process-wide time-bounded view cache.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultTTL applies to key categories missing from the TTL table.
const DefaultTTL = 5 * time.Minute

type entry struct {
	value    any
	storedAt time.Time
}

// Stats summarises the cache population.
type Stats struct {
	Total   int `json:"total_keys"`
	Expired int `json:"expired"`
	Active  int `json:"active"`
}

// Recorder counts cache lookup outcomes per key category.
// *observability.CoreMetrics satisfies it.
type Recorder interface {
	RecordCache(ctx context.Context, category string, hit bool)
}

// Store maps namespaced keys ("<category>:<qualifier>") to values with
// per-category TTLs. Mutation happens from many goroutines, so all access
// goes through the lock.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]entry
	ttls     map[string]time.Duration
	clock    func() time.Time
	recorder Recorder
}

// NewStore constructs a store with the provided category TTL table.
// A nil clock defaults to time.Now.
func NewStore(ttls map[string]time.Duration, clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	copied := make(map[string]time.Duration, len(ttls))
	for k, v := range ttls {
		copied[k] = v
	}
	return &Store{
		mu:       sync.RWMutex{},
		entries:  make(map[string]entry),
		ttls:     copied,
		clock:    clock,
		recorder: nil,
	}
}

// Instrument installs a lookup recorder. Call once before serving traffic.
func (s *Store) Instrument(rec Recorder) {
	s.recorder = rec
}

// Category extracts the TTL category from a namespaced key.
func Category(key string) string {
	if idx := strings.IndexByte(key, ':'); idx >= 0 {
		return key[:idx]
	}
	return key
}

// TTLFor resolves the TTL that applies to the given key.
func (s *Store) TTLFor(key string) time.Duration {
	if ttl, ok := s.ttls[Category(key)]; ok {
		return ttl
	}
	return DefaultTTL
}

// Get returns the cached value if it has not outlived its category TTL.
func (s *Store) Get(key string) (any, bool) {
	return s.GetWithTTL(key, 0)
}

// GetWithTTL returns the cached value using an explicit TTL instead of the
// category table. A non-positive override falls back to the category TTL.
func (s *Store) GetWithTTL(key string, override time.Duration) (any, bool) {
	ttl := override
	if ttl <= 0 {
		ttl = s.TTLFor(key)
	}
	now := s.clock()

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || now.Sub(e.storedAt) >= ttl {
		s.record(key, false)
		return nil, false
	}
	s.record(key, true)
	return e.value, true
}

func (s *Store) record(key string, hit bool) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordCache(context.Background(), Category(key), hit)
}

// Set stores the value, overwriting any existing entry.
func (s *Store) Set(key string, value any) {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, storedAt: now}
}

// Clear drops every entry whose key starts with prefix. An empty prefix
// drops everything. Prefix clearing lets administrative actions invalidate
// only affected keys without a full flush.
func (s *Store) Clear(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prefix == "" {
		dropped := len(s.entries)
		s.entries = make(map[string]entry)
		return dropped
	}
	dropped := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			dropped++
		}
	}
	return dropped
}

// Stats reports total, expired, and active entry counts.
func (s *Store) Stats() Stats {
	now := s.clock()
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := Stats{Total: len(s.entries), Expired: 0, Active: 0}
	for key, e := range s.entries {
		if now.Sub(e.storedAt) >= s.TTLFor(key) {
			stats.Expired++
		}
	}
	stats.Active = stats.Total - stats.Expired
	return stats
}
