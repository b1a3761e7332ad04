package core

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdkmigrate/internal/types"
)

func ref(project string, id string, version string) types.ProjectPackageReference {
	return types.ProjectPackageReference{ProjectPath: project, PackageID: id, Version: version}
}

type scriptedPrompter struct {
	choice     string
	ok         bool
	err        error
	candidates []string
}

func (p *scriptedPrompter) ChooseVersion(_ context.Context, _ types.PackageVersionConflict, candidates []string) (string, bool, error) {
	p.candidates = candidates
	return p.choice, p.ok, p.err
}

// ---------------------------------------------------------------------------
// Detection
// ---------------------------------------------------------------------------

func TestDetectConflictsSoundness(t *testing.T) {
	projects := types.ProjectPackageMap{
		"P2.csproj": {ref("P2.csproj", "A", "2.0.0"), ref("P2.csproj", "Same", "1.0.0")},
		"P1.csproj": {ref("P1.csproj", "a", "1.0.0"), ref("P1.csproj", "Same", "1.0.0")},
		"P3.csproj": {ref("P3.csproj", "A", "1.5.0"), ref("P3.csproj", "Same", " 1.0.0 ")},
	}
	resolver := NewConflictResolver(nil, nil)

	got := resolver.DetectConflicts(projects)
	want := []types.PackageVersionConflict{{
		PackageID: "a",
		RequestedVersions: []types.ProjectPackageVersion{
			{ProjectPath: "P1.csproj", Version: "1.0.0"},
			{ProjectPath: "P2.csproj", Version: "2.0.0"},
			{ProjectPath: "P3.csproj", Version: "1.5.0"},
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected conflicts (-want +got):\n%s", diff)
	}
}

func TestDetectConflictsIgnoresTransitive(t *testing.T) {
	transitive := ref("P2.csproj", "System.Memory", "4.5.5")
	transitive.IsTransitive = true
	projects := types.ProjectPackageMap{
		"P1.csproj": {ref("P1.csproj", "System.Memory", "4.5.4")},
		"P2.csproj": {transitive},
	}
	assert.Empty(t, NewConflictResolver(nil, nil).DetectConflicts(projects))
}

func TestDetectConflictsSortedByID(t *testing.T) {
	projects := types.ProjectPackageMap{
		"x.csproj": {ref("", "Zeta", "1.0.0"), ref("", "alpha", "1.0.0"), ref("", "Moq", "4.0.0")},
		"y.csproj": {ref("", "Zeta", "2.0.0"), ref("", "alpha", "2.0.0"), ref("", "Moq", "4.0.0")},
	}
	got := NewConflictResolver(nil, nil).DetectConflicts(projects)
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].PackageID)
	assert.Equal(t, "Zeta", got[1].PackageID)
}

// ---------------------------------------------------------------------------
// Resolution
// ---------------------------------------------------------------------------

func exampleConflict() types.PackageVersionConflict {
	return types.PackageVersionConflict{
		PackageID: "A",
		RequestedVersions: []types.ProjectPackageVersion{
			{ProjectPath: "P1", Version: "1.0.0"},
			{ProjectPath: "P2", Version: "2.0.0"},
			{ProjectPath: "P3", Version: "1.5.0"},
		},
	}
}

func TestResolveConflictsUseHighestExample(t *testing.T) {
	resolver := NewConflictResolver(nil, nil)

	got := resolver.ResolveConflicts(t.Context(), []types.PackageVersionConflict{exampleConflict()}, types.StrategyUseHighest)
	want := types.PackageVersionResolution{
		ResolvedVersions: map[string]string{"A": "2.0.0"},
		ProjectsNeedingUpdate: []types.ProjectVersionUpdate{
			{ProjectPath: "P1", PackageID: "A", OldVersion: "1.0.0", NewVersion: "2.0.0"},
			{ProjectPath: "P3", PackageID: "A", OldVersion: "1.5.0", NewVersion: "2.0.0"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected resolution (-want +got):\n%s", diff)
	}
}

func TestResolveConflictsStrategies(t *testing.T) {
	source := newTestRegistrySource("feed", map[string][]string{"A": {"3.0.0", "3.1.0-beta"}})
	registry := NewRegistryClient(source)

	tests := []struct {
		name     string
		strategy types.ConflictStrategy
		conflict types.PackageVersionConflict
		want     string
		notes    int
	}{
		{name: "lowest", strategy: types.StrategyUseLowest, conflict: exampleConflict(), want: "1.0.0"},
		{name: "latest stable", strategy: types.StrategyUseLatestStable, conflict: exampleConflict(), want: "3.0.0"},
		{
			name:     "most common",
			strategy: types.StrategyUseMostCommon,
			conflict: types.PackageVersionConflict{PackageID: "A", RequestedVersions: []types.ProjectPackageVersion{
				{ProjectPath: "P1", Version: "1.0.0"},
				{ProjectPath: "P2", Version: "2.0.0"},
				{ProjectPath: "P3", Version: "1.0.0"},
			}},
			want: "1.0.0",
		},
		{
			name:     "most common tie takes higher",
			strategy: types.StrategyUseMostCommon,
			conflict: types.PackageVersionConflict{PackageID: "A", RequestedVersions: []types.ProjectPackageVersion{
				{ProjectPath: "P1", Version: "1.0.0"},
				{ProjectPath: "P2", Version: "1.10.0"},
				{ProjectPath: "P3", Version: "1.9.0"},
			}},
			want: "1.10.0",
		},
		{
			name:     "highest with wildcards asks registry",
			strategy: types.StrategyUseHighest,
			conflict: types.PackageVersionConflict{PackageID: "A", RequestedVersions: []types.ProjectPackageVersion{
				{ProjectPath: "P1", Version: "*"},
				{ProjectPath: "P2", Version: ""},
			}},
			want: "3.0.0",
		},
		{
			name:     "highest ignores wildcard among concrete",
			strategy: types.StrategyUseHighest,
			conflict: types.PackageVersionConflict{PackageID: "A", RequestedVersions: []types.ProjectPackageVersion{
				{ProjectPath: "P1", Version: "*"},
				{ProjectPath: "P2", Version: "1.2.0"},
			}},
			want: "1.2.0",
		},
		{
			name:     "unparseable falls back to text",
			strategy: types.StrategyUseHighest,
			conflict: types.PackageVersionConflict{PackageID: "A", RequestedVersions: []types.ProjectPackageVersion{
				{ProjectPath: "P1", Version: "banana"},
				{ProjectPath: "P2", Version: "cherry"},
			}},
			want:  "cherry",
			notes: 1,
		},
		{name: "interactive without prompter", strategy: types.StrategyInteractive, conflict: exampleConflict(), want: "2.0.0", notes: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewConflictResolver(registry, nil)
			got := resolver.ResolveConflicts(t.Context(), []types.PackageVersionConflict{tt.conflict}, tt.strategy)
			assert.Equal(t, map[string]string{"A": tt.want}, got.ResolvedVersions)
			assert.Len(t, got.Notes, tt.notes)
		})
	}
}

func TestResolveConflictsLatestStableFallsBackToHighest(t *testing.T) {
	resolver := NewConflictResolver(NewRegistryClient(newTestRegistrySource("empty", nil)), nil)

	got := resolver.ResolveConflicts(t.Context(), []types.PackageVersionConflict{exampleConflict()}, types.StrategyUseLatestStable)
	assert.Equal(t, "2.0.0", got.ResolvedVersions["A"])
	require.Len(t, got.Notes, 1)
	assert.Contains(t, got.Notes[0], "used highest")
}

func TestResolveConflictsWildcardsWithoutRegistry(t *testing.T) {
	conflict := types.PackageVersionConflict{PackageID: "A", RequestedVersions: []types.ProjectPackageVersion{
		{ProjectPath: "P1", Version: "*"},
		{ProjectPath: "P2", Version: ""},
	}}
	got := NewConflictResolver(nil, nil).ResolveConflicts(t.Context(), []types.PackageVersionConflict{conflict}, types.StrategyUseLowest)

	assert.Equal(t, types.WildcardVersion, got.ResolvedVersions["A"])
	assert.Len(t, got.Notes, 1)
	require.Len(t, got.ProjectsNeedingUpdate, 1)
	assert.Equal(t, "P2", got.ProjectsNeedingUpdate[0].ProjectPath)
}

func TestResolveConflictsInteractivePrompter(t *testing.T) {
	prompter := &scriptedPrompter{choice: "1.5.0", ok: true}
	resolver := NewConflictResolver(nil, prompter)

	got := resolver.ResolveConflicts(t.Context(), []types.PackageVersionConflict{exampleConflict()}, types.StrategyInteractive)
	assert.Equal(t, "1.5.0", got.ResolvedVersions["A"])
	assert.Equal(t, []string{"2.0.0", "1.5.0", "1.0.0"}, prompter.candidates)
	assert.Empty(t, got.Notes)

	failing := NewConflictResolver(nil, &scriptedPrompter{err: errors.New("no tty")})
	got = failing.ResolveConflicts(t.Context(), []types.PackageVersionConflict{exampleConflict()}, types.StrategyInteractive)
	assert.Equal(t, "2.0.0", got.ResolvedVersions["A"])
	assert.Len(t, got.Notes, 1)
}

func TestResolveConflictsTotality(t *testing.T) {
	projects := types.ProjectPackageMap{
		"P1": {ref("P1", "A", "1.0.0"), ref("P1", "B", "2.0.0"), ref("P1", "C", "1.0.0")},
		"P2": {ref("P2", "A", "1.0.0"), ref("P2", "B", "2.1.0"), ref("P2", "C", "*")},
		"P3": {ref("P3", "A", "1.1.0"), ref("P3", "B", "2.0.0"), ref("P3", "C", "1.0.0")},
	}
	resolver := NewConflictResolver(nil, nil)
	conflicts := resolver.DetectConflicts(projects)
	require.Len(t, conflicts, 3)

	for _, strategy := range []types.ConflictStrategy{
		types.StrategyUseHighest, types.StrategyUseLowest, types.StrategyUseLatestStable,
		types.StrategyUseMostCommon, types.StrategyInteractive,
	} {
		resolution := resolver.ResolveConflicts(t.Context(), conflicts, strategy)
		require.Len(t, resolution.ResolvedVersions, len(conflicts), strategy)

		seen := map[string]int{}
		for _, update := range resolution.ProjectsNeedingUpdate {
			seen[update.PackageID+"|"+update.ProjectPath]++
			assert.NotEqual(t, update.OldVersion, update.NewVersion)
			assert.Equal(t, resolution.ResolvedVersions[update.PackageID], update.NewVersion)
		}
		for _, conflict := range conflicts {
			resolved := resolution.ResolvedVersions[conflict.PackageID]
			for _, requested := range conflict.RequestedVersions {
				key := conflict.PackageID + "|" + requested.ProjectPath
				if requested.Version == resolved {
					assert.Zero(t, seen[key], "%s: %s", strategy, key)
				} else {
					assert.Equal(t, 1, seen[key], "%s: %s", strategy, key)
				}
			}
		}

		again := resolver.ResolveConflicts(t.Context(), conflicts, strategy)
		assert.Equal(t, resolution, again, "resolution is reproducible for %s", strategy)
	}
}

// ---------------------------------------------------------------------------
// Apply
// ---------------------------------------------------------------------------

func TestApplyResolutionIsIdempotent(t *testing.T) {
	transitive := ref("P3", "A", "0.9.0")
	transitive.IsTransitive = true
	projects := types.ProjectPackageMap{
		"P1": {ref("P1", "A", "1.0.0"), ref("P1", "Other", "1.0.0")},
		"P2": {ref("P2", "a", "2.0.0")},
		"P3": {transitive},
	}
	resolver := NewConflictResolver(nil, nil)
	resolution := types.PackageVersionResolution{ResolvedVersions: map[string]string{"A": "2.0.0"}}

	assert.Equal(t, 1, resolver.ApplyResolution(resolution, projects))
	once := types.ProjectPackageMap{}
	for path, refs := range projects {
		once[path] = append([]types.ProjectPackageReference(nil), refs...)
	}

	assert.Equal(t, 0, resolver.ApplyResolution(resolution, projects))
	if diff := cmp.Diff(once, projects); diff != "" {
		t.Fatalf("second apply changed the map (-once +twice):\n%s", diff)
	}
	assert.Equal(t, "2.0.0", projects["P1"][0].Version)
	assert.Equal(t, "1.0.0", projects["P1"][1].Version)
	assert.Equal(t, "0.9.0", projects["P3"][0].Version)
}
