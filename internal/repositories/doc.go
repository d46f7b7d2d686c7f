// Package repositories implements SQLite persistence for club100.
//
// Key Implementations:
//   - [SearchCache] : resolved search results keyed by normalized query, with TTL and a schema version tag
//   - [TimelineRepository] : the ordered timeline and its language setting
//   - [RenderJobRepository] : render submissions and their download references
//
// The search cache stores one version tag in search_cache_meta. Any access that finds a tag other than
// [resolver.CacheVersion] deletes every entry and rewrites the tag before continuing.
package repositories
