package adapters

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"sdkmigrate/internal/ports"
	"sdkmigrate/internal/types"
)

type ProjectMapFileAdapter struct{}

func NewProjectMapFileAdapter() ProjectMapFileAdapter {
	return ProjectMapFileAdapter{}
}

var _ ports.ProjectMapPort = ProjectMapFileAdapter{}

// LoadProjectMap reads a YAML project map. JSON input is accepted since it
// is a subset of YAML.
func (a ProjectMapFileAdapter) LoadProjectMap(path string) (types.ProjectMapFile, error) {
	if strings.TrimSpace(path) == "" {
		return types.ProjectMapFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project map path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ProjectMapFile{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("project map file not found").
			WithCause(err)
	}
	var file types.ProjectMapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return types.ProjectMapFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid project map format").
			WithCause(err)
	}
	if len(file.Projects) == 0 {
		return types.ProjectMapFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project map lists no projects: " + filepath.Base(path))
	}
	for project, packages := range file.Projects {
		for _, pkg := range packages {
			if strings.TrimSpace(pkg.ID) == "" {
				return types.ProjectMapFile{}, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("empty package id in project " + project)
			}
		}
	}
	return file, nil
}

// WriteProjectMap writes file as YAML to path, creating parent directories.
func (a ProjectMapFileAdapter) WriteProjectMap(path string, file types.ProjectMapFile) error {
	if strings.TrimSpace(path) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project map path is empty")
	}
	data, err := yaml.Marshal(file)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode project map").
			WithCause(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create project map directory").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write project map").
			WithCause(err)
	}
	return nil
}
