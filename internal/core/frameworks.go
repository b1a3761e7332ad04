package core

import (
	"sort"
	"strconv"
	"strings"

	"sdkmigrate/internal/types"
)

// TargetFramework is a parsed target platform identifier such as net472,
// netcoreapp3.1 or net8.0-windows.
type TargetFramework struct {
	Raw      string
	Family   types.FrameworkFamily
	Version  []int
	Platform string
}

var frameworkPrefixes = []struct {
	prefix string
	family types.FrameworkFamily
}{
	{prefix: "netstandard", family: types.FamilyStandard},
	{prefix: "netcoreapp", family: types.FamilyCoreApp},
	{prefix: "net", family: types.FamilyLegacyFramework},
}

// ParseTargetFramework understands the short folder names used in project
// files and package lib/ folders. ok is false for anything else.
func ParseTargetFramework(raw string) (TargetFramework, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	framework := TargetFramework{Raw: value}
	if value == "" {
		return framework, false
	}
	if strings.HasPrefix(value, "portable") {
		framework.Family = types.FamilyPortable
		return framework, true
	}
	for _, candidate := range frameworkPrefixes {
		if !strings.HasPrefix(value, candidate.prefix) {
			continue
		}
		rest := value[len(candidate.prefix):]
		if idx := strings.Index(rest, "-"); idx >= 0 {
			framework.Platform = rest[idx+1:]
			rest = rest[:idx]
		}
		version, ok := parseFrameworkVersion(rest, candidate.family == types.FamilyLegacyFramework)
		if !ok {
			return framework, false
		}
		framework.Family = candidate.family
		framework.Version = version
		if candidate.family == types.FamilyLegacyFramework && strings.Contains(rest, ".") && version[0] >= 5 {
			framework.Family = types.FamilyModern
		}
		return framework, true
	}
	return framework, false
}

// parseFrameworkVersion reads "4.7.2" or, for compact forms, "472".
func parseFrameworkVersion(value string, compact bool) ([]int, bool) {
	if value == "" {
		return nil, false
	}
	var parts []string
	if strings.Contains(value, ".") || !compact {
		parts = strings.Split(value, ".")
	} else {
		parts = strings.Split(value, "")
	}
	version := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, false
		}
		version = append(version, n)
	}
	return version, true
}

// FrameworkFamilyOf returns the family of a target identifier, or
// FamilyUnknown.
func FrameworkFamilyOf(raw string) types.FrameworkFamily {
	framework, ok := ParseTargetFramework(raw)
	if !ok {
		return types.FamilyUnknown
	}
	return framework.Family
}

func compareFrameworkVersions(a []int, b []int) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

// SelectLibFolder picks the lib/ sub-folder that best serves target: the
// exact folder, then the highest same-family folder not newer than target,
// then the highest netstandard folder, then portable or root folders, then
// the first folder in lexicographic order.
func SelectLibFolder(target string, folders []string) (string, bool) {
	if len(folders) == 0 {
		return "", false
	}
	sorted := append([]string(nil), folders...)
	sort.Strings(sorted)

	wanted, wantedOK := ParseTargetFramework(target)
	for _, folder := range sorted {
		if wantedOK && strings.EqualFold(folder, wanted.Raw) {
			return folder, true
		}
	}
	if wantedOK {
		if folder, ok := highestFolder(sorted, wanted.Family, wanted.Version); ok {
			return folder, true
		}
	}
	if folder, ok := highestFolder(sorted, types.FamilyStandard, nil); ok {
		return folder, true
	}
	for _, folder := range sorted {
		if folder == "" || FrameworkFamilyOf(folder) == types.FamilyPortable {
			return folder, true
		}
	}
	return sorted[0], true
}

// highestFolder returns the newest folder of family whose version does not
// exceed limit. A nil limit accepts every version.
func highestFolder(folders []string, family types.FrameworkFamily, limit []int) (string, bool) {
	best := ""
	var bestVersion []int
	found := false
	for _, folder := range folders {
		parsed, ok := ParseTargetFramework(folder)
		if !ok || parsed.Family != family {
			continue
		}
		if limit != nil && compareFrameworkVersions(parsed.Version, limit) > 0 {
			continue
		}
		if !found || compareFrameworkVersions(parsed.Version, bestVersion) > 0 {
			best = folder
			bestVersion = parsed.Version
			found = true
		}
	}
	return best, found
}
