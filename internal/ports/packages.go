package ports

// LocalPackagesPort inspects extracted packages on disk. LibFolders maps each
// framework folder under lib/ to the module names it ships; a package that is
// not present locally yields a nil map.
type LocalPackagesPort interface {
	LibFolders(packageID string, version string) (map[string][]string, error)
}
