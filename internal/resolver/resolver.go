// package resolver turns free-text queries into songs by racing two search providers behind a cache.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/services"
	"github.com/desertthunder/club100/internal/shared"
)

// CacheVersion tags every cache entry; stored entries with another version are discarded.
const CacheVersion = "v1"

// Cache stores resolved results keyed by normalized query.
type Cache interface {
	// Get returns the cached results and whether a valid entry was found.
	Get(ctx context.Context, key string) ([]models.Song, bool, error)
	Put(ctx context.Context, key string, results []models.Song) error
	Clear(ctx context.Context) error
}

// Normalize produces the cache key for a query.
func Normalize(query string) string {
	return shared.NormalizeQuery(query)
}

// Resolver checks the cache, then races a primary and a fallback provider.
type Resolver struct {
	primary  services.Provider
	fallback services.Provider
	cache    Cache
	logger   *log.Logger
}

// New creates a Resolver. cache may be nil to disable caching.
func New(primary, fallback services.Provider, cache Cache, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Resolver{primary: primary, fallback: fallback, cache: cache, logger: logger}
}

type outcome struct {
	source string
	songs  []models.Song
	err    error
}

// Resolve returns candidate songs for query.
//
// A query that is already a URL resolves to that URL without consulting providers.
// A valid cache hit returns immediately. Otherwise the primary (when available) and the fallback run
// concurrently; the first non-empty success wins and is cached. An empty slice with a nil error means at
// least one provider answered but none found anything. When every provider call fails the result is
// [shared.ErrAllSourcesFailed].
func (r *Resolver) Resolve(ctx context.Context, query string) ([]models.Song, error) {
	if shared.IsURL(query) {
		u := strings.TrimSpace(query)
		return []models.Song{{URL: u, Title: u}}, nil
	}

	key := Normalize(query)

	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.logger.Warn("cache read failed", "query", key, "error", err)
		} else if ok {
			r.logger.Debug("cache hit", "query", key, "results", len(cached))
			return cached, nil
		}
	}

	providers := r.launchable()
	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: no providers configured", shared.ErrAllSourcesFailed)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan outcome, len(providers))
	for _, p := range providers {
		go func(p services.Provider) {
			songs, err := p.Search(ctx, query)
			results <- outcome{source: p.Name(), songs: songs, err: err}
		}(p)
	}

	var errs []error
	for range providers {
		var o outcome
		select {
		case o = <-results:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		if o.err != nil {
			if errors.Is(o.err, shared.ErrProviderQuotaExceeded) {
				r.logger.Warn("provider quota exceeded", "provider", o.source, "query", key)
			} else {
				r.logger.Warn("provider failed", "provider", o.source, "query", key, "error", o.err)
			}
			errs = append(errs, fmt.Errorf("%s: %w", o.source, o.err))
			continue
		}

		r.logger.Debug("provider completed", "provider", o.source, "query", key, "results", len(o.songs))
		if len(o.songs) > 0 {
			r.store(ctx, key, o.songs)
			return o.songs, nil
		}
	}

	if len(errs) == len(providers) {
		r.logger.Error("all search methods failed", "query", key, "error", errors.Join(errs...))
		return nil, shared.ErrAllSourcesFailed
	}
	return []models.Song{}, nil
}

// launchable returns the providers to race: the primary only when configured, the fallback always.
func (r *Resolver) launchable() []services.Provider {
	var ps []services.Provider
	if r.primary != nil && r.primary.Available() {
		ps = append(ps, r.primary)
	}
	if r.fallback != nil {
		ps = append(ps, r.fallback)
	}
	return ps
}

func (r *Resolver) store(ctx context.Context, key string, songs []models.Song) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Put(context.WithoutCancel(ctx), key, songs); err != nil {
		r.logger.Warn("cache write failed", "query", key, "error", err)
	}
}

// ClearCache drops every cached result.
func (r *Resolver) ClearCache(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Clear(ctx)
}
