package ports

import (
	"context"

	"sdkmigrate/internal/types"
)

// PackageResolver answers version and assembly questions. Every method
// reports "not found" through its boolean or an empty slice, never through
// an error.
type PackageResolver interface {
	GetLatestStableVersion(ctx context.Context, packageID string) (string, bool)
	GetLatestVersion(ctx context.Context, packageID string, includePrerelease bool) (string, bool)
	GetAllVersions(ctx context.Context, packageID string, includePrerelease bool) []string
	ResolveAssemblyToPackage(ctx context.Context, assemblyName string, targetPlatform string) (types.PackageResolutionResult, bool)
	GetPackageDependencies(ctx context.Context, packageID string, version string) ([]string, bool)
}
