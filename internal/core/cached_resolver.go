package core

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"sdkmigrate/internal/ports"
	"sdkmigrate/internal/types"
)

// CachedResolver serves resolver calls from the version cache and falls
// through to the wrapped resolver on a miss. Only positive answers are
// stored, so a package that appears later is found on the next call.
type CachedResolver struct {
	delegate ports.PackageResolver
	cache    *VersionCache
	shared   ports.SharedCacheStore
}

var _ ports.PackageResolver = (*CachedResolver)(nil)

// NewCachedResolver wraps delegate. shared is optional.
func NewCachedResolver(delegate ports.PackageResolver, cache *VersionCache, shared ports.SharedCacheStore) *CachedResolver {
	return &CachedResolver{delegate: delegate, cache: cache, shared: shared}
}

func (r *CachedResolver) Cache() *VersionCache {
	return r.cache
}

func (r *CachedResolver) GetLatestStableVersion(ctx context.Context, packageID string) (string, bool) {
	return r.GetLatestVersion(ctx, packageID, false)
}

func (r *CachedResolver) GetLatestVersion(ctx context.Context, packageID string, includePrerelease bool) (string, bool) {
	key := types.CacheKey{Kind: types.CacheKindVersion, PackageID: packageID, Prerelease: &includePrerelease}
	if version, ok := r.cache.GetVersion(key); ok {
		return version, true
	}
	if version, ok := lookupShared[string](ctx, r, key); ok {
		r.cache.SetVersion(key, version)
		return version, true
	}
	version, ok := r.delegate.GetLatestVersion(ctx, packageID, includePrerelease)
	if !ok {
		return "", false
	}
	r.cache.SetVersion(key, version)
	storeShared(ctx, r, key, version)
	return version, true
}

func (r *CachedResolver) GetAllVersions(ctx context.Context, packageID string, includePrerelease bool) []string {
	key := types.CacheKey{Kind: types.CacheKindVersionList, PackageID: packageID, Prerelease: &includePrerelease}
	if versions, ok := r.cache.GetVersionList(key); ok {
		return versions
	}
	if versions, ok := lookupShared[[]string](ctx, r, key); ok && len(versions) > 0 {
		r.cache.SetVersionList(key, versions)
		return versions
	}
	versions := r.delegate.GetAllVersions(ctx, packageID, includePrerelease)
	if len(versions) == 0 {
		return nil
	}
	r.cache.SetVersionList(key, versions)
	storeShared(ctx, r, key, versions)
	return versions
}

// ResolveAssemblyToPackage looks candidate packages up through the version
// cache, so the probes of one assembly serve later package queries.
func (r *CachedResolver) ResolveAssemblyToPackage(ctx context.Context, assemblyName string, targetPlatform string) (types.PackageResolutionResult, bool) {
	key := types.CacheKey{Kind: types.CacheKindAssembly, PackageID: assemblyName, TargetPlatform: targetPlatform}
	if result, ok := r.cache.GetAssembly(key); ok {
		return result, true
	}
	if result, ok := lookupShared[types.PackageResolutionResult](ctx, r, key); ok && result.PackageID != "" {
		r.cache.SetAssembly(key, result)
		return result, true
	}
	result, ok := resolveAssembly(ctx, r.GetLatestStableVersion, assemblyName, targetPlatform)
	if !ok {
		return types.PackageResolutionResult{}, false
	}
	r.cache.SetAssembly(key, result)
	storeShared(ctx, r, key, result)
	return result, true
}

func (r *CachedResolver) GetPackageDependencies(ctx context.Context, packageID string, version string) ([]string, bool) {
	key := types.CacheKey{Kind: types.CacheKindDependencies, PackageID: packageID + "@" + version}
	if deps, ok := r.cache.GetDependencies(key); ok {
		return deps, true
	}
	if deps, ok := lookupShared[[]string](ctx, r, key); ok {
		r.cache.SetDependencies(key, deps)
		return deps, true
	}
	deps, ok := r.delegate.GetPackageDependencies(ctx, packageID, version)
	if !ok {
		return nil, false
	}
	r.cache.SetDependencies(key, deps)
	storeShared(ctx, r, key, deps)
	return deps, true
}

func lookupShared[T any](ctx context.Context, r *CachedResolver, key types.CacheKey) (T, bool) {
	var value T
	if r.shared == nil {
		return value, false
	}
	data, ok, err := r.shared.Get(ctx, key.String())
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key.String()).Msg("shared cache read failed")
		return value, false
	}
	if !ok {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key.String()).Msg("shared cache entry unreadable")
		return value, false
	}
	r.cache.RecordSharedHit()
	return value, true
}

func storeShared[T any](ctx context.Context, r *CachedResolver, key types.CacheKey, value T) {
	if r.shared == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key.String()).Msg("shared cache entry not encodable")
		return
	}
	if err := r.shared.Set(ctx, key.String(), data, r.cache.TTL()); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key.String()).Msg("shared cache write failed")
	}
}
