package ports

import "sdkmigrate/internal/types"

type ProjectMapPort interface {
	LoadProjectMap(path string) (types.ProjectMapFile, error)
	WriteProjectMap(path string, file types.ProjectMapFile) error
}
