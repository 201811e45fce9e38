package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryEntries bounds a MemoryCache created with size <= 0.
const DefaultMemoryEntries = 1024

// MemoryCache is a bounded in-process LRU. The least recently used entry is
// evicted once the size limit is reached; expired entries are dropped on
// read.
type MemoryCache struct {
	lru *lru.Cache[string, memoryEntry]
	now func() time.Time

	mu     sync.Mutex
	hits   uint64
	misses uint64
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache creates an LRU cache holding at most size entries.
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	c, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{lru: c, now: time.Now}, nil
}

// Get retrieves a value.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	e, ok := c.lru.Get(key)
	if ok && !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.lru.Remove(key)
		ok = false
	}
	c.record(ok)
	if !ok {
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set stores a copy of data.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := memoryEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.lru.Add(key, e)
	return nil
}

// Delete removes a value.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Close purges all entries.
func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}

// Len returns the number of entries, including expired ones not yet read.
func (c *MemoryCache) Len() int { return c.lru.Len() }

// HitRate returns hits and misses since creation.
func (c *MemoryCache) HitRate() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *MemoryCache) record(hit bool) {
	c.mu.Lock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
}

var _ Cache = (*MemoryCache)(nil)
