package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdkmigrate/internal/types"
)

// ---------------------------------------------------------------------------
// versionCache
// ---------------------------------------------------------------------------

func TestVersionCacheMemoizes(t *testing.T) {
	cache := newVersionCache()

	first := cache.get("1.2.3")
	second := cache.get("1.2.3")
	require.True(t, first.has(schemeSemver))
	assert.Same(t, first.sem, second.sem)
}

func TestVersionCacheWildcardNeverParses(t *testing.T) {
	cache := newVersionCache()
	assert.False(t, cache.get("*").any())
	assert.False(t, cache.get("1.0.*").any())
	assert.False(t, cache.get("").any())
}

func TestVersionCacheDominantSchemePrefersFourPart(t *testing.T) {
	cache := newVersionCache()
	scheme, ok := cache.dominantScheme([]string{"1.0.0", "1.0.0.1", "2.0.0.0"})
	require.True(t, ok)
	assert.Equal(t, schemePep440, scheme)
}

// ---------------------------------------------------------------------------
// CompareVersions
// ---------------------------------------------------------------------------

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
		ok   bool
	}{
		{name: "semver less", a: "1.0.0", b: "2.0.0", want: -1, ok: true},
		{name: "semver equal", a: "1.2.3", b: "1.2.3", want: 0, ok: true},
		{name: "prerelease below release", a: "1.0.0-beta", b: "1.0.0", want: -1, ok: true},
		{name: "four part numeric", a: "1.2.3.10", b: "1.2.3.4", want: 1, ok: true},
		{name: "wildcard", a: "*", b: "1.0.0", ok: false},
		{name: "garbage", a: "latest", b: "1.0.0", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CompareVersions(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Sorting and extremes
// ---------------------------------------------------------------------------

func TestSortVersionsDescendingDedupes(t *testing.T) {
	got := SortVersionsDescending([]string{"1.0.0", "2.0.0", "1.5.0", "2.0.0", "1.0.0-beta", " "})
	want := []string{"2.0.0", "1.5.0", "1.0.0", "1.0.0-beta"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestSortVersionsDescendingUnparseableLast(t *testing.T) {
	got := SortVersionsDescending([]string{"banana", "1.0.0", "apple", "3.1.0"})
	want := []string{"3.1.0", "1.0.0", "banana", "apple"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestSortVersionsDescendingIsOrderIndependent(t *testing.T) {
	a := SortVersionsDescending([]string{"1.0", "1.0.0", "0.9.0"})
	b := SortVersionsDescending([]string{"0.9.0", "1.0.0", "1.0"})
	assert.Equal(t, a, b)
}

func TestHighestAndLowestVersion(t *testing.T) {
	values := []string{"1.0.0", "2.0.0", "1.5.0", "*"}

	highest, ok := HighestVersion(values)
	require.True(t, ok)
	assert.Equal(t, "2.0.0", highest)

	lowest, ok := LowestVersion(values)
	require.True(t, ok)
	assert.Equal(t, "1.0.0", lowest)
}

func TestHighestVersionNoneParse(t *testing.T) {
	_, ok := HighestVersion([]string{"*", "latest"})
	assert.False(t, ok)
}

// ---------------------------------------------------------------------------
// Prerelease partitioning
// ---------------------------------------------------------------------------

func TestIsPrerelease(t *testing.T) {
	assert.True(t, IsPrerelease("1.0.0-beta.1"))
	assert.True(t, IsPrerelease("6.0.0-preview.3.21201.4"))
	assert.True(t, IsPrerelease("1.0.0rc1"))
	assert.False(t, IsPrerelease("1.0.0"))
	assert.False(t, IsPrerelease("2.0.0+build.5"))
	assert.False(t, IsPrerelease("4.0.0.0"))
	assert.False(t, IsPrerelease(""))
}

func TestNewVersionSet(t *testing.T) {
	set := NewVersionSet("Contoso.Lib", []string{"1.0.0", "2.0.0-rc.1", "1.1.0"})
	want := types.VersionSet{
		ID:         "Contoso.Lib",
		Stable:     []string{"1.1.0", "1.0.0"},
		Prerelease: []string{"2.0.0-rc.1"},
	}
	if diff := cmp.Diff(want, set); diff != "" {
		t.Fatalf("unexpected version set (-want +got):\n%s", diff)
	}
}

func TestFilterVersions(t *testing.T) {
	sorted := []string{"2.0.0-rc.1", "1.1.0", "1.0.0"}
	assert.Equal(t, []string{"1.1.0", "1.0.0"}, FilterVersions(sorted, false))
	assert.Equal(t, sorted, FilterVersions(sorted, true))
}
