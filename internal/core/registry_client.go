package core

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"sdkmigrate/internal/ports"
	"sdkmigrate/internal/types"
)

// RegistryClient merges the answers of every configured registry source.
// Sources that fail are logged and treated as having no versions.
type RegistryClient struct {
	sources []ports.RegistrySource
}

var _ ports.PackageResolver = (*RegistryClient)(nil)

func NewRegistryClient(sources ...ports.RegistrySource) *RegistryClient {
	return &RegistryClient{sources: sources}
}

func (c *RegistryClient) Sources() []ports.RegistrySource {
	return append([]ports.RegistrySource(nil), c.sources...)
}

// VersionSet queries all sources concurrently and merges their versions.
// ok is false when no source produced a version.
func (c *RegistryClient) VersionSet(ctx context.Context, packageID string) (types.VersionSet, bool) {
	results := make([][]string, len(c.sources))
	var group errgroup.Group
	for idx, source := range c.sources {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return nil
			}
			versions, err := source.ListVersions(ctx, packageID)
			if err != nil {
				log.Ctx(ctx).Warn().Err(err).
					Str("source", source.Name()).
					Str("package", packageID).
					Msg("registry source failed; skipping")
				return nil
			}
			results[idx] = versions
			return nil
		})
	}
	_ = group.Wait()

	var merged []string
	for _, versions := range results {
		merged = append(merged, versions...)
	}
	if len(merged) == 0 {
		return types.VersionSet{ID: packageID}, false
	}
	return NewVersionSet(packageID, merged), true
}

func (c *RegistryClient) AllVersions(ctx context.Context, packageID string, includePrerelease bool) []string {
	set, ok := c.VersionSet(ctx, packageID)
	if !ok {
		return nil
	}
	if includePrerelease {
		return SortVersionsDescending(set.All())
	}
	return set.Stable
}

func (c *RegistryClient) LatestAny(ctx context.Context, packageID string, includePrerelease bool) (string, bool) {
	versions := c.AllVersions(ctx, packageID, includePrerelease)
	if len(versions) == 0 {
		return "", false
	}
	return versions[0], true
}

func (c *RegistryClient) LatestStable(ctx context.Context, packageID string) (string, bool) {
	return c.LatestAny(ctx, packageID, false)
}

// ResolveAssembly maps a module name to the package that ships it. Well-known
// mappings win; otherwise candidates from AssemblyCandidates are tried in
// order and the first with a stable version is returned.
func (c *RegistryClient) ResolveAssembly(ctx context.Context, assemblyName string, targetPlatform string) (types.PackageResolutionResult, bool) {
	return resolveAssembly(ctx, c.LatestStable, assemblyName, targetPlatform)
}

// latestStableLookup answers the newest stable version of a package.
type latestStableLookup func(ctx context.Context, packageID string) (string, bool)

func resolveAssembly(ctx context.Context, latest latestStableLookup, assemblyName string, targetPlatform string) (types.PackageResolutionResult, bool) {
	logger := log.Ctx(ctx).With().Str("assembly", assemblyName).Logger()
	if entry, ok := wellKnownAssembly(assemblyName); ok {
		version, found := latest(ctx, entry.PackageID)
		if !found {
			version = types.WildcardVersion
		}
		logger.Debug().Str("package", entry.PackageID).Msg("assembly matched well-known mapping")
		return resolutionFromWellKnown(entry, version), true
	}

	for _, candidate := range AssemblyCandidates(assemblyName) {
		if err := ctx.Err(); err != nil {
			logger.Debug().Err(err).Msg("assembly resolution cancelled")
			return types.PackageResolutionResult{}, false
		}
		version, ok := latest(ctx, candidate)
		if !ok {
			continue
		}
		logger.Debug().
			Str("package", candidate).
			Str("target_platform", targetPlatform).
			Msg("assembly resolved")
		return types.PackageResolutionResult{PackageID: candidate, Version: version}, true
	}
	return types.PackageResolutionResult{}, false
}

// Dependencies returns the dependency ids of one package version from the
// first source that knows them.
func (c *RegistryClient) Dependencies(ctx context.Context, packageID string, version string) ([]string, bool) {
	for _, source := range c.sources {
		if err := ctx.Err(); err != nil {
			return nil, false
		}
		deps, ok, err := source.Dependencies(ctx, packageID, version)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).
				Str("source", source.Name()).
				Str("package", packageID).
				Str("version", version).
				Msg("dependency lookup failed; skipping source")
			continue
		}
		if ok {
			return dedupeIDs(deps), true
		}
	}
	return nil, false
}

func (c *RegistryClient) GetLatestStableVersion(ctx context.Context, packageID string) (string, bool) {
	return c.LatestStable(ctx, packageID)
}

func (c *RegistryClient) GetLatestVersion(ctx context.Context, packageID string, includePrerelease bool) (string, bool) {
	return c.LatestAny(ctx, packageID, includePrerelease)
}

func (c *RegistryClient) GetAllVersions(ctx context.Context, packageID string, includePrerelease bool) []string {
	return c.AllVersions(ctx, packageID, includePrerelease)
}

func (c *RegistryClient) ResolveAssemblyToPackage(ctx context.Context, assemblyName string, targetPlatform string) (types.PackageResolutionResult, bool) {
	return c.ResolveAssembly(ctx, assemblyName, targetPlatform)
}

func (c *RegistryClient) GetPackageDependencies(ctx context.Context, packageID string, version string) ([]string, bool) {
	return c.Dependencies(ctx, packageID, version)
}
