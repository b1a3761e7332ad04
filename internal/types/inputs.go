package types

// RegistryIndexFile is the on-disk format of a file registry source.
type RegistryIndexFile struct {
	Packages map[string]RegistryIndexPackage `yaml:"packages"`
}

type RegistryIndexPackage struct {
	Versions     []string            `yaml:"versions"`
	Dependencies map[string][]string `yaml:"dependencies,omitempty"`
}

// ProjectMapFile is the input format listing each project's declared packages.
type ProjectMapFile struct {
	TargetPlatform string                       `yaml:"target_platform,omitempty"`
	Projects       map[string][]PackageIdentity `yaml:"projects"`
}

// ProjectFileInfo is what a project file contributes to a project map.
type ProjectFileInfo struct {
	Path           string
	TargetPlatform string
	Packages       []PackageIdentity
	// PackagesConfig is true when the references came from packages.config.
	PackagesConfig bool
}
