package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/desertthunder/club100/internal/models"
)

const DefaultTTL = 24 * time.Hour

type memoryEntry struct {
	results   []models.Song
	writtenAt time.Time
}

// MemoryCache is an in-process [Cache] with the same TTL and version rules as the SQLite cache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	version string
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an empty cache tagged with [CacheVersion].
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{entries: make(map[string]memoryEntry), version: CacheVersion, ttl: ttl, now: time.Now}
}

// SetClock replaces the time source.
func (c *MemoryCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// SetVersion overwrites the stored version tag, as an older build would have left it.
func (c *MemoryCache) SetVersion(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = v
}

// checkVersion wipes entries when the stored tag differs from [CacheVersion]. Caller holds mu.
func (c *MemoryCache) checkVersion() {
	if c.version != CacheVersion {
		c.entries = make(map[string]memoryEntry)
		c.version = CacheVersion
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]models.Song, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkVersion()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.writtenAt) >= c.ttl {
		return nil, false, nil
	}
	return append([]models.Song(nil), e.results...), true, nil
}

func (c *MemoryCache) Put(_ context.Context, key string, results []models.Song) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkVersion()

	c.entries[key] = memoryEntry{results: append([]models.Song(nil), results...), writtenAt: c.now()}
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
	c.version = CacheVersion
	return nil
}

// Len returns the number of stored entries, valid or not.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
