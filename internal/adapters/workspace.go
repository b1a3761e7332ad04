package adapters

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"sdkmigrate/internal/ports"
)

type WorkspaceAdapter struct{}

func NewWorkspaceAdapter() WorkspaceAdapter {
	return WorkspaceAdapter{}
}

var _ ports.WorkspacePort = WorkspaceAdapter{}

// FindProjects returns the C#, VB and F# project files below root, sorted.
func (a WorkspaceAdapter) FindProjects(root string) ([]string, error) {
	var paths []string
	if strings.TrimSpace(root) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("workspace root is empty")
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && shouldSkipWorkspaceDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isProjectFile(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to scan workspace").
			WithCause(err)
	}
	sort.Strings(paths)
	return paths, nil
}

func isProjectFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csproj", ".vbproj", ".fsproj":
		return true
	default:
		return false
	}
}

// Build output, restore folders and tool state never hold source projects.
func shouldSkipWorkspaceDir(name string) bool {
	switch strings.ToLower(name) {
	case "bin", "obj", "packages", "node_modules", ".git", ".vs", ".idea":
		return true
	default:
		return false
	}
}
