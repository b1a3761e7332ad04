package types

type ProjectPackageReference struct {
	ProjectPath  string `yaml:"project" json:"project" toml:"project"`
	PackageID    string `yaml:"id" json:"id" toml:"id"`
	Version      string `yaml:"version" json:"version" toml:"version"`
	IsTransitive bool   `yaml:"transitive,omitempty" json:"transitive,omitempty" toml:"transitive,omitempty"`
}

// ProjectPackageMap is keyed by project path.
type ProjectPackageMap map[string][]ProjectPackageReference

type ProjectPackageVersion struct {
	ProjectPath string `yaml:"project" json:"project" toml:"project"`
	Version     string `yaml:"version" json:"version" toml:"version"`
}

type PackageVersionConflict struct {
	PackageID         string                  `yaml:"id" json:"id" toml:"id"`
	RequestedVersions []ProjectPackageVersion `yaml:"requested" json:"requested" toml:"requested"`
}

type ProjectVersionUpdate struct {
	ProjectPath string `yaml:"project" json:"project" toml:"project"`
	PackageID   string `yaml:"id" json:"id" toml:"id"`
	OldVersion  string `yaml:"old_version" json:"old_version" toml:"old_version"`
	NewVersion  string `yaml:"new_version" json:"new_version" toml:"new_version"`
}

type PackageVersionResolution struct {
	ResolvedVersions      map[string]string      `yaml:"resolved" json:"resolved" toml:"resolved"`
	ProjectsNeedingUpdate []ProjectVersionUpdate `yaml:"updates" json:"updates" toml:"updates"`
	Notes                 []string               `yaml:"notes,omitempty" json:"notes,omitempty" toml:"notes,omitempty"`
}
