package core

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"sdkmigrate/internal/types"
)

const (
	DefaultCacheTTL      = 60 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
	cacheShardCount      = 32
)

type cacheShard[T any] struct {
	mu      sync.RWMutex
	entries map[string]types.CacheEntry[T]
}

// shardedMap spreads keys over independently locked shards so a sweep or a
// write only ever holds one shard.
type shardedMap[T any] struct {
	shards [cacheShardCount]*cacheShard[T]
}

func newShardedMap[T any]() *shardedMap[T] {
	m := &shardedMap[T]{}
	for i := range m.shards {
		m.shards[i] = &cacheShard[T]{entries: map[string]types.CacheEntry[T]{}}
	}
	return m
}

func (m *shardedMap[T]) shard(key string) *cacheShard[T] {
	return m.shards[xxhash.Sum64String(key)%cacheShardCount]
}

func (m *shardedMap[T]) get(key string, now time.Time) (T, bool) {
	shard := m.shard(key)
	shard.mu.RLock()
	entry, ok := shard.entries[key]
	shard.mu.RUnlock()
	if !ok || entry.Expired(now) {
		var zero T
		return zero, false
	}
	return entry.Value, true
}

func (m *shardedMap[T]) set(key string, value T, expiresAt time.Time) {
	shard := m.shard(key)
	shard.mu.Lock()
	shard.entries[key] = types.CacheEntry[T]{Value: value, ExpiresAt: expiresAt}
	shard.mu.Unlock()
}

func (m *shardedMap[T]) sweep(now time.Time) int {
	removed := 0
	for _, shard := range m.shards {
		shard.mu.Lock()
		for key, entry := range shard.entries {
			if entry.Expired(now) {
				delete(shard.entries, key)
				removed++
			}
		}
		shard.mu.Unlock()
	}
	return removed
}

func (m *shardedMap[T]) clear() {
	for _, shard := range m.shards {
		shard.mu.Lock()
		shard.entries = map[string]types.CacheEntry[T]{}
		shard.mu.Unlock()
	}
}

func (m *shardedMap[T]) len() int {
	total := 0
	for _, shard := range m.shards {
		shard.mu.RLock()
		total += len(shard.entries)
		shard.mu.RUnlock()
	}
	return total
}

type cacheCounters struct {
	hits   atomic.Int64
	misses atomic.Int64
}

func (c *cacheCounters) record(hit bool) {
	if hit {
		c.hits.Add(1)
		return
	}
	c.misses.Add(1)
}

type VersionCacheOptions struct {
	TTL           time.Duration
	SweepInterval time.Duration
	Clock         clockwork.Clock
}

// VersionCache stores four independent fact types with a fixed TTL. Expired
// entries read as absent and are removed by a periodic sweep.
type VersionCache struct {
	ttl   time.Duration
	clock clockwork.Clock

	versions     *shardedMap[string]
	versionLists *shardedMap[[]string]
	assemblies   *shardedMap[types.PackageResolutionResult]
	dependencies *shardedMap[[]string]

	counters   map[types.CacheKind]*cacheCounters
	sharedHits atomic.Int64
	startedAt  time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewVersionCache creates the cache and starts its sweep loop. Call Close to
// stop the loop.
func NewVersionCache(opts VersionCacheOptions) *VersionCache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultCacheTTL
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	c := &VersionCache{
		ttl:          opts.TTL,
		clock:        opts.Clock,
		versions:     newShardedMap[string](),
		versionLists: newShardedMap[[]string](),
		assemblies:   newShardedMap[types.PackageResolutionResult](),
		dependencies: newShardedMap[[]string](),
		counters:     map[types.CacheKind]*cacheCounters{},
		startedAt:    opts.Clock.Now(),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, kind := range types.CacheKinds {
		c.counters[kind] = &cacheCounters{}
	}
	go c.sweepLoop(opts.Clock.NewTicker(opts.SweepInterval))
	return c
}

func (c *VersionCache) TTL() time.Duration { return c.ttl }

func (c *VersionCache) GetVersion(key types.CacheKey) (string, bool) {
	value, ok := c.versions.get(key.String(), c.clock.Now())
	c.counters[types.CacheKindVersion].record(ok)
	return value, ok
}

func (c *VersionCache) SetVersion(key types.CacheKey, version string) {
	c.versions.set(key.String(), version, c.expiry())
}

func (c *VersionCache) GetVersionList(key types.CacheKey) ([]string, bool) {
	value, ok := c.versionLists.get(key.String(), c.clock.Now())
	c.counters[types.CacheKindVersionList].record(ok)
	if !ok {
		return nil, false
	}
	return append([]string(nil), value...), true
}

func (c *VersionCache) SetVersionList(key types.CacheKey, versions []string) {
	c.versionLists.set(key.String(), append([]string(nil), versions...), c.expiry())
}

func (c *VersionCache) GetAssembly(key types.CacheKey) (types.PackageResolutionResult, bool) {
	value, ok := c.assemblies.get(key.String(), c.clock.Now())
	c.counters[types.CacheKindAssembly].record(ok)
	if !ok {
		return types.PackageResolutionResult{}, false
	}
	value.AdditionalPackages = append([]string(nil), value.AdditionalPackages...)
	return value, true
}

func (c *VersionCache) SetAssembly(key types.CacheKey, result types.PackageResolutionResult) {
	result.AdditionalPackages = append([]string(nil), result.AdditionalPackages...)
	c.assemblies.set(key.String(), result, c.expiry())
}

func (c *VersionCache) GetDependencies(key types.CacheKey) ([]string, bool) {
	value, ok := c.dependencies.get(key.String(), c.clock.Now())
	c.counters[types.CacheKindDependencies].record(ok)
	if !ok {
		return nil, false
	}
	return append([]string(nil), value...), true
}

func (c *VersionCache) SetDependencies(key types.CacheKey, dependencies []string) {
	c.dependencies.set(key.String(), append([]string(nil), dependencies...), c.expiry())
}

// RecordSharedHit counts a lookup answered by a shared second tier.
func (c *VersionCache) RecordSharedHit() {
	c.sharedHits.Add(1)
}

// Clear drops every entry. Statistics are cumulative and survive.
func (c *VersionCache) Clear() {
	c.versions.clear()
	c.versionLists.clear()
	c.assemblies.clear()
	c.dependencies.clear()
}

// Sweep removes expired entries from all four maps and returns how many
// were dropped.
func (c *VersionCache) Sweep() int {
	now := c.clock.Now()
	removed := c.versions.sweep(now)
	removed += c.versionLists.sweep(now)
	removed += c.assemblies.sweep(now)
	removed += c.dependencies.sweep(now)
	return removed
}

func (c *VersionCache) Stats() types.CacheStatistics {
	entries := c.versions.len() + c.versionLists.len() + c.assemblies.len() + c.dependencies.len()
	stats := types.CacheStatistics{
		Hits:         map[types.CacheKind]int64{},
		Misses:       map[types.CacheKind]int64{},
		SharedHits:   c.sharedHits.Load(),
		TotalEntries: entries,
		Uptime:       c.clock.Since(c.startedAt),
	}
	for kind, counters := range c.counters {
		stats.Hits[kind] = counters.hits.Load()
		stats.Misses[kind] = counters.misses.Load()
	}
	return stats
}

// Close stops the sweep loop and logs the final statistics. It is safe to
// call more than once.
func (c *VersionCache) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done
		stats := c.Stats()
		log.Info().
			Int("entries", stats.TotalEntries).
			Int64("hits", stats.TotalHits()).
			Int64("misses", stats.TotalMisses()).
			Int64("shared_hits", stats.SharedHits).
			Float64("hit_rate", stats.HitRate()).
			Dur("uptime", stats.Uptime).
			Msg("version cache closed")
	})
}

func (c *VersionCache) expiry() time.Time {
	return c.clock.Now().Add(c.ttl)
}

func (c *VersionCache) sweepLoop(ticker clockwork.Ticker) {
	defer close(c.done)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.Chan():
			if removed := c.Sweep(); removed > 0 {
				log.Debug().Int("removed", removed).Msg("version cache sweep")
			}
		}
	}
}
