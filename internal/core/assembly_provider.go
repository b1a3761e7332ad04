package core

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"sdkmigrate/internal/ports"
	"sdkmigrate/internal/types"
)

// AssemblyProvider works out which modules a package contributes for a
// target platform. It keeps no state between calls; callers memoize.
type AssemblyProvider struct {
	table    types.FrameworkCompatibilityTable
	packages ports.LocalPackagesPort
	resolver ports.PackageResolver
}

// NewAssemblyProvider builds a provider. packages and resolver may be nil.
func NewAssemblyProvider(table types.FrameworkCompatibilityTable, packages ports.LocalPackagesPort, resolver ports.PackageResolver) *AssemblyProvider {
	if table == nil {
		table = DefaultFrameworkTable()
	}
	return &AssemblyProvider{table: table, packages: packages, resolver: resolver}
}

// AssembliesFor returns the sorted module names of packageID@version for
// targetPlatform. The static table and the local package folder are unioned;
// the reverse assembly lookup is consulted only when both come up empty.
func (p *AssemblyProvider) AssembliesFor(ctx context.Context, packageID string, version string, targetPlatform string) []string {
	logger := log.Ctx(ctx).With().Str("package", packageID).Str("version", version).Logger()
	modules := tableModules(p.table, packageID, targetPlatform)

	if p.packages != nil {
		folders, err := p.packages.LibFolders(packageID, version)
		if err != nil {
			logger.Debug().Err(err).Msg("local package inspection failed")
		}
		if len(folders) > 0 {
			names := make([]string, 0, len(folders))
			for folder := range folders {
				names = append(names, folder)
			}
			if folder, ok := SelectLibFolder(targetPlatform, names); ok {
				logger.Debug().Str("folder", folder).Str("target_platform", targetPlatform).Msg("lib folder selected")
				modules = append(modules, folders[folder]...)
			}
		}
	}

	if len(modules) == 0 && p.resolver != nil {
		if result, ok := p.resolver.ResolveAssemblyToPackage(ctx, packageID, targetPlatform); ok && strings.EqualFold(result.PackageID, packageID) {
			modules = append(modules, packageID)
		}
	}
	return sortedModuleSet(modules)
}

func sortedModuleSet(modules []string) []string {
	unique := dedupeIDs(modules)
	sort.Slice(unique, func(i, j int) bool {
		return strings.ToLower(unique[i]) < strings.ToLower(unique[j])
	})
	return unique
}
