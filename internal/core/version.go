package core

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	pep440 "github.com/aquasecurity/go-pep440-version"
	debversion "github.com/knqyf263/go-deb-version"
	"github.com/rs/zerolog/log"

	"sdkmigrate/internal/types"
)

// versionScheme is an ordering rule. Schemes are tried in declaration order:
// semantic versions first, PEP 440 for four-part and legacy release numbers,
// Debian ordering for anything else that starts with a digit.
type versionScheme int

const (
	schemeSemver versionScheme = iota
	schemePep440
	schemeDeb
)

var versionSchemes = []versionScheme{schemeSemver, schemePep440, schemeDeb}

// parsedVersion holds every successful parse of one raw version string.
type parsedVersion struct {
	sem *semver.Version
	pep *pep440.Version
	deb *debversion.Version
}

func (p parsedVersion) has(scheme versionScheme) bool {
	switch scheme {
	case schemeSemver:
		return p.sem != nil
	case schemePep440:
		return p.pep != nil
	case schemeDeb:
		return p.deb != nil
	default:
		return false
	}
}

func (p parsedVersion) any() bool {
	return p.sem != nil || p.pep != nil || p.deb != nil
}

// versionCache memoizes parsed versions for the duration of one ordering
// operation. It is not safe for concurrent use.
type versionCache struct {
	parsed map[string]parsedVersion
}

func newVersionCache() *versionCache {
	return &versionCache{parsed: map[string]parsedVersion{}}
}

func (c *versionCache) get(raw string) parsedVersion {
	if parsed, ok := c.parsed[raw]; ok {
		return parsed
	}
	parsed := parseVersion(raw)
	c.parsed[raw] = parsed
	return parsed
}

func parseVersion(raw string) parsedVersion {
	trimmed := strings.TrimSpace(raw)
	var parsed parsedVersion
	if trimmed == "" || strings.Contains(trimmed, "*") {
		return parsed
	}
	if v, err := semver.NewVersion(trimmed); err == nil {
		parsed.sem = v
	}
	if v, err := pep440.Parse(trimmed); err == nil {
		parsed.pep = &v
	}
	if v, err := debversion.NewVersion(trimmed); err == nil {
		parsed.deb = &v
	}
	return parsed
}

// compareIn compares two versions that both parse under scheme.
func (c *versionCache) compareIn(scheme versionScheme, a string, b string) int {
	pa, pb := c.get(a), c.get(b)
	switch scheme {
	case schemeSemver:
		return pa.sem.Compare(pb.sem)
	case schemePep440:
		return pa.pep.Compare(*pb.pep)
	case schemeDeb:
		return pa.deb.Compare(*pb.deb)
	default:
		return 0
	}
}

// commonScheme returns the first scheme under which both versions parse.
func (c *versionCache) commonScheme(a string, b string) (versionScheme, bool) {
	pa, pb := c.get(a), c.get(b)
	for _, scheme := range versionSchemes {
		if pa.has(scheme) && pb.has(scheme) {
			return scheme, true
		}
	}
	return 0, false
}

// dominantScheme picks the scheme that parses the most values, preferring
// earlier schemes on ties. Ordering a whole list under one scheme keeps the
// comparison transitive.
func (c *versionCache) dominantScheme(values []string) (versionScheme, bool) {
	best := -1
	bestCount := 0
	for idx, scheme := range versionSchemes {
		count := 0
		for _, value := range values {
			if c.get(value).has(scheme) {
				count++
			}
		}
		if count > bestCount {
			best = idx
			bestCount = count
		}
	}
	if best < 0 {
		return 0, false
	}
	return versionSchemes[best], true
}

// CompareVersions orders two version strings. ok is false when no scheme
// parses both, in which case callers fall back to raw string ordering.
func CompareVersions(a string, b string) (int, bool) {
	cache := newVersionCache()
	scheme, ok := cache.commonScheme(a, b)
	if !ok {
		return 0, false
	}
	return cache.compareIn(scheme, a, b), true
}

// SortVersionsDescending deduplicates values (case-insensitive) and orders
// them newest first. Versions that do not parse under the dominant scheme
// follow the ordered ones in descending lexicographic order.
func SortVersionsDescending(values []string) []string {
	unique := dedupeVersions(values)
	if len(unique) < 2 {
		return unique
	}
	cache := newVersionCache()
	scheme, ok := cache.dominantScheme(unique)
	sort.SliceStable(unique, func(i, j int) bool {
		a, b := unique[i], unique[j]
		if ok {
			pa, pb := cache.get(a).has(scheme), cache.get(b).has(scheme)
			switch {
			case pa && pb:
				if cmp := cache.compareIn(scheme, a, b); cmp != 0 {
					return cmp > 0
				}
				return a > b
			case pa != pb:
				return pa
			}
		}
		return a > b
	})
	return unique
}

// HighestVersion returns the greatest parseable version. ok is false when
// no value parses.
func HighestVersion(values []string) (string, bool) {
	return extremeVersion(values, 1)
}

// LowestVersion returns the least parseable version. ok is false when no
// value parses.
func LowestVersion(values []string) (string, bool) {
	return extremeVersion(values, -1)
}

func extremeVersion(values []string, direction int) (string, bool) {
	cache := newVersionCache()
	var candidates []string
	for _, value := range values {
		if !cache.get(value).any() {
			if !types.IsWildcardVersion(value) {
				log.Debug().Str("version", value).Msg("unparseable version excluded from comparison")
			}
			continue
		}
		candidates = append(candidates, value)
	}
	scheme, ok := cache.dominantScheme(candidates)
	if !ok {
		return "", false
	}
	best := ""
	for _, candidate := range candidates {
		if !cache.get(candidate).has(scheme) {
			continue
		}
		if best == "" {
			best = candidate
			continue
		}
		cmp := cache.compareIn(scheme, candidate, best)
		if cmp == 0 {
			// "1.0" and "1.0.0" tie; keep the result independent of input order.
			if (direction > 0 && candidate > best) || (direction < 0 && candidate < best) {
				best = candidate
			}
			continue
		}
		if cmp*direction > 0 {
			best = candidate
		}
	}
	return best, best != ""
}

var prereleaseMarker = regexp.MustCompile(`(?i)^[0-9]+(\.[0-9]+)*[-_.]?(a|b|c|rc|alpha|beta|pre|preview|dev)[-_.]?[0-9]*`)

// IsPrerelease reports whether a version carries a pre-release marker
// segment. Build metadata after '+' is ignored.
func IsPrerelease(version string) bool {
	trimmed := strings.TrimSpace(version)
	if idx := strings.Index(trimmed, "+"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	if trimmed == "" {
		return false
	}
	if v, err := semver.NewVersion(trimmed); err == nil {
		return v.Prerelease() != ""
	}
	if strings.Contains(trimmed, "-") {
		return true
	}
	return prereleaseMarker.MatchString(trimmed)
}

// NewVersionSet orders versions newest first and partitions them by
// prerelease status.
func NewVersionSet(packageID string, versions []string) types.VersionSet {
	set := types.VersionSet{ID: packageID}
	for _, version := range SortVersionsDescending(versions) {
		if IsPrerelease(version) {
			set.Prerelease = append(set.Prerelease, version)
			continue
		}
		set.Stable = append(set.Stable, version)
	}
	return set
}

// FilterVersions returns the ordered versions, dropping prereleases unless
// includePrerelease is set.
func FilterVersions(sorted []string, includePrerelease bool) []string {
	if includePrerelease {
		return sorted
	}
	out := make([]string, 0, len(sorted))
	for _, version := range sorted {
		if !IsPrerelease(version) {
			out = append(out, version)
		}
	}
	return out
}

func dedupeVersions(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
