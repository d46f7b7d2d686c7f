package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/resolver"
)

// SearchCache implements [resolver.Cache] on SQLite.
//
// An entry is valid while its age is below the TTL and the stored version tag equals [resolver.CacheVersion].
// Concurrent Get/Put for the same key may race; the last write wins.
type SearchCache struct {
	db      *sql.DB
	ttl     time.Duration
	version string
	now     func() time.Time
}

// NewSearchCache creates a cache with the given TTL; non-positive means [resolver.DefaultTTL].
func NewSearchCache(db *sql.DB, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = resolver.DefaultTTL
	}
	return &SearchCache{db: db, ttl: ttl, version: resolver.CacheVersion, now: time.Now}
}

// SetClock replaces the time source used for TTL checks and write timestamps.
func (c *SearchCache) SetClock(now func() time.Time) {
	c.now = now
}

// Get returns the cached results for key when the entry is valid.
func (c *SearchCache) Get(ctx context.Context, key string) ([]models.Song, bool, error) {
	if err := c.ensureVersion(ctx); err != nil {
		return nil, false, err
	}

	var (
		payload   string
		writtenAt time.Time
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT results, written_at FROM search_cache WHERE normalized_query = ?", key,
	).Scan(&payload, &writtenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if c.now().Sub(writtenAt) >= c.ttl {
		return nil, false, nil
	}

	var songs []models.Song
	if err := json.Unmarshal([]byte(payload), &songs); err != nil {
		return nil, false, nil
	}
	return songs, true, nil
}

// Put stores results for key, replacing any previous entry.
func (c *SearchCache) Put(ctx context.Context, key string, results []models.Song) error {
	if err := c.ensureVersion(ctx); err != nil {
		return err
	}

	if results == nil {
		results = []models.Song{}
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO search_cache (normalized_query, results, written_at)
		VALUES (?, ?, ?)
		ON CONFLICT(normalized_query) DO UPDATE SET results = excluded.results, written_at = excluded.written_at
	`, key, string(payload), c.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Clear deletes every entry and rewrites the version tag.
func (c *SearchCache) Clear(ctx context.Context) error {
	return withTx(ctx, c.db, func(tx *sql.Tx) error {
		return c.reset(ctx, tx)
	})
}

// Count returns the number of stored entries, valid or not.
func (c *SearchCache) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM search_cache").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}

// StoredVersion returns the version tag currently persisted, or "" when none is stored.
func (c *SearchCache) StoredVersion(ctx context.Context) (string, error) {
	var v string
	err := c.db.QueryRowContext(ctx, "SELECT version FROM search_cache_meta WHERE id = 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cache version: %w", err)
	}
	return v, nil
}

// SetStoredVersion overwrites the persisted version tag without touching entries.
func (c *SearchCache) SetStoredVersion(ctx context.Context, v string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO search_cache_meta (id, version) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET version = excluded.version
	`, v)
	if err != nil {
		return fmt.Errorf("failed to write cache version: %w", err)
	}
	return nil
}

func (c *SearchCache) ensureVersion(ctx context.Context) error {
	stored, err := c.StoredVersion(ctx)
	if err != nil {
		return err
	}
	if stored == c.version {
		return nil
	}

	return withTx(ctx, c.db, func(tx *sql.Tx) error {
		return c.reset(ctx, tx)
	})
}

func (c *SearchCache) reset(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM search_cache"); err != nil {
		return fmt.Errorf("failed to clear cache entries: %w", err)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO search_cache_meta (id, version) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET version = excluded.version
	`, c.version)
	if err != nil {
		return fmt.Errorf("failed to write cache version: %w", err)
	}
	return nil
}
