package ports

import "sdkmigrate/internal/types"

// ProjectFilePort reads the package references a project declares, either
// as PackageReference items or in a sibling packages.config.
type ProjectFilePort interface {
	ParseProject(path string) (types.ProjectFileInfo, error)
}

// WorkspacePort discovers project files below a root directory.
type WorkspacePort interface {
	FindProjects(root string) ([]string, error)
}
