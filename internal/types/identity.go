package types

import "strings"

// WildcardVersion marks an unconstrained version request.
const WildcardVersion = "*"

type PackageIdentity struct {
	ID      string `yaml:"id" json:"id" toml:"id"`
	Version string `yaml:"version" json:"version" toml:"version"`
}

// SameID reports whether two identities name the same package. Package ids
// are case-insensitive.
func (p PackageIdentity) SameID(other PackageIdentity) bool {
	return strings.EqualFold(p.ID, other.ID)
}

func (p PackageIdentity) String() string {
	if p.Version == "" {
		return p.ID
	}
	return p.ID + "@" + p.Version
}

func IsWildcardVersion(version string) bool {
	trimmed := strings.TrimSpace(version)
	return trimmed == "" || trimmed == WildcardVersion
}

// VersionSet holds the known versions of a package, newest first, split by
// prerelease status.
type VersionSet struct {
	ID         string
	Stable     []string
	Prerelease []string
}

// All returns the stable versions followed by the prerelease versions.
func (s VersionSet) All() []string {
	out := make([]string, 0, len(s.Stable)+len(s.Prerelease))
	out = append(out, s.Stable...)
	out = append(out, s.Prerelease...)
	return out
}

type ResolutionRequest struct {
	AssemblyName   string
	TargetPlatform string
}

type PackageResolutionResult struct {
	PackageID          string   `json:"package_id"`
	Version            string   `json:"version"`
	AdditionalPackages []string `json:"additional_packages,omitempty"`
	Notes              string   `json:"notes,omitempty"`
}
