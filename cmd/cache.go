package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/club100/internal/repositories"
	"github.com/desertthunder/club100/internal/resolver"
	"github.com/urfave/cli/v3"
)

func (r *Runner) searchCache() (*repositories.SearchCache, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return repositories.NewSearchCache(db, r.config.CacheTTL()), nil
}

// CacheClear drops the local search cache and, unless --local-only, the worker's downloaded audio.
//
// A worker failure is reported but does not fail the command.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	res, err := r.resolver()
	if err != nil {
		return err
	}
	if err := res.ClearCache(ctx); err != nil {
		return fmt.Errorf("failed to clear search cache: %w", err)
	}
	r.writePlain("✓ Search cache cleared\n")

	if cmd.Bool("local-only") {
		return nil
	}

	if err := r.worker.ClearCache(ctx); err != nil {
		r.logger.Warn("failed to clear worker cache", "worker", r.worker.BaseURL(), "error", err)
		r.writePlain("✗ Worker cache not cleared: %v\n", err)
		return nil
	}
	r.writePlain("✓ Worker cache cleared\n")
	return nil
}

// CacheStats prints the number of cached queries and the stored cache version.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	cache, err := r.searchCache()
	if err != nil {
		return err
	}

	count, err := cache.Count(ctx)
	if err != nil {
		return err
	}
	version, err := cache.StoredVersion(ctx)
	if err != nil {
		return err
	}
	if version == "" {
		version = "none"
	}

	r.writePlainHeader("Search cache")
	r.writePlain("Entries:  %d\n", count)
	r.writePlain("Version:  %s (current %s)\n", version, resolver.CacheVersion)
	r.writePlain("TTL:      %s\n", r.config.CacheTTL())
	return nil
}
