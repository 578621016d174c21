package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const memoryLayer = "memory"

// DefaultMemorySize is the entry bound used when NewMemoryStore gets size <= 0.
const DefaultMemorySize = 4096

// MemoryStore is an in-process Store backed by a bounded LRU.
// Expired entries read as misses until overwritten or evicted.
type MemoryStore struct {
	entries *lru.Cache[string, Entry]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding at most size entries.
func NewMemoryStore(size int) (*MemoryStore, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	entries, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &MemoryStore{entries: entries}, nil
}

// Get returns the stored value or ErrCacheMiss.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	entry, ok := s.entries.Get(key)
	if !ok {
		CacheMisses.WithLabelValues(memoryLayer).Inc()
		return nil, ErrCacheMiss
	}
	// Never remove here: a concurrent Set may already have replaced the entry.
	if entry.IsExpired() {
		CacheMisses.WithLabelValues(memoryLayer).Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues(memoryLayer).Inc()
	return entry.Data, nil
}

// Set stores value for ttl, replacing any previous entry.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		CacheErrors.WithLabelValues(memoryLayer, "set").Inc()
		return ErrInvalidTTL
	}
	s.entries.Add(key, NewEntry(value, ttl))
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.entries.Remove(key)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	return s.entries.Len()
}
