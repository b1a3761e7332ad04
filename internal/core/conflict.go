package core

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"sdkmigrate/internal/policies"
	"sdkmigrate/internal/ports"
	"sdkmigrate/internal/types"
)

// SchemeOrder orders versions with the package's version rules.
type SchemeOrder struct{}

var _ policies.VersionOrder = SchemeOrder{}

func (SchemeOrder) Compare(a string, b string) (int, bool) { return CompareVersions(a, b) }
func (SchemeOrder) Highest(values []string) (string, bool) { return HighestVersion(values) }
func (SchemeOrder) Lowest(values []string) (string, bool) { return LowestVersion(values) }

// ConflictResolver finds packages whose direct declarations disagree across
// projects and settles each on one version. It must not run concurrently
// over the same project map.
type ConflictResolver struct {
	resolver ports.PackageResolver
	prompter ports.ConflictPrompter
}

// NewConflictResolver builds a resolver. Both arguments may be nil; without a
// registry the wildcard and latest-stable strategies fall back to requested
// versions.
func NewConflictResolver(resolver ports.PackageResolver, prompter ports.ConflictPrompter) *ConflictResolver {
	return &ConflictResolver{resolver: resolver, prompter: prompter}
}

// DetectConflicts reports every package declared directly with more than one
// distinct version string. Conflicts are sorted by package id and requesters
// by project path.
func (r *ConflictResolver) DetectConflicts(projects types.ProjectPackageMap) []types.PackageVersionConflict {
	type group struct {
		id        string
		requested []types.ProjectPackageVersion
		versions  map[string]struct{}
	}
	groups := map[string]*group{}
	for _, path := range sortedProjectPaths(projects) {
		for _, ref := range projects[path] {
			if ref.IsTransitive {
				continue
			}
			key := strings.ToLower(strings.TrimSpace(ref.PackageID))
			if key == "" {
				continue
			}
			entry, ok := groups[key]
			if !ok {
				entry = &group{id: strings.TrimSpace(ref.PackageID), versions: map[string]struct{}{}}
				groups[key] = entry
			}
			version := strings.TrimSpace(ref.Version)
			entry.requested = append(entry.requested, types.ProjectPackageVersion{ProjectPath: path, Version: version})
			entry.versions[version] = struct{}{}
		}
	}

	var conflicts []types.PackageVersionConflict
	for _, entry := range groups {
		if len(entry.versions) < 2 {
			continue
		}
		sort.SliceStable(entry.requested, func(i, j int) bool {
			return entry.requested[i].ProjectPath < entry.requested[j].ProjectPath
		})
		conflicts = append(conflicts, types.PackageVersionConflict{
			PackageID:         entry.id,
			RequestedVersions: entry.requested,
		})
	}
	sort.Slice(conflicts, func(i, j int) bool {
		return strings.ToLower(conflicts[i].PackageID) < strings.ToLower(conflicts[j].PackageID)
	})
	return conflicts
}

// ResolveConflicts settles every conflict with strategy. Each conflict gets
// exactly one resolved version and each project requesting a different
// version gets exactly one update.
func (r *ConflictResolver) ResolveConflicts(ctx context.Context, conflicts []types.PackageVersionConflict, strategy types.ConflictStrategy) types.PackageVersionResolution {
	resolution := types.PackageVersionResolution{
		ResolvedVersions:      map[string]string{},
		ProjectsNeedingUpdate: []types.ProjectVersionUpdate{},
	}
	inputs := policies.StrategyInputs{Order: SchemeOrder{}, Prompter: r.prompter}
	if r.resolver != nil {
		inputs.Latest = r.resolver.GetLatestStableVersion
	}
	for _, conflict := range conflicts {
		version, notes := policies.SelectVersion(ctx, strategy, conflict, inputs)
		resolution.ResolvedVersions[conflict.PackageID] = version
		resolution.Notes = append(resolution.Notes, notes...)

		updated := map[string]struct{}{}
		for _, requested := range conflict.RequestedVersions {
			if strings.TrimSpace(requested.Version) == version {
				continue
			}
			if _, ok := updated[requested.ProjectPath]; ok {
				continue
			}
			updated[requested.ProjectPath] = struct{}{}
			resolution.ProjectsNeedingUpdate = append(resolution.ProjectsNeedingUpdate, types.ProjectVersionUpdate{
				ProjectPath: requested.ProjectPath,
				PackageID:   conflict.PackageID,
				OldVersion:  requested.Version,
				NewVersion:  version,
			})
		}
		log.Ctx(ctx).Debug().
			Str("package", conflict.PackageID).
			Str("strategy", string(strategy)).
			Str("version", version).
			Int("updates", len(updated)).
			Msg("conflict resolved")
	}
	return resolution
}

// ApplyResolution rewrites the version of every direct declaration of a
// resolved package in place. Applying the same resolution twice is a no-op
// the second time.
func (r *ConflictResolver) ApplyResolution(resolution types.PackageVersionResolution, projects types.ProjectPackageMap) int {
	resolved := make(map[string]string, len(resolution.ResolvedVersions))
	for id, version := range resolution.ResolvedVersions {
		resolved[strings.ToLower(strings.TrimSpace(id))] = version
	}
	changed := 0
	for _, refs := range projects {
		for idx := range refs {
			if refs[idx].IsTransitive {
				continue
			}
			version, ok := resolved[strings.ToLower(strings.TrimSpace(refs[idx].PackageID))]
			if !ok || refs[idx].Version == version {
				continue
			}
			refs[idx].Version = version
			changed++
		}
	}
	return changed
}
