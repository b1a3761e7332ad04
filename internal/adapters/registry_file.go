package adapters

import (
	"context"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"sdkmigrate/internal/ports"
	"sdkmigrate/internal/shared"
	"sdkmigrate/internal/types"
)

// FileSourceAdapter serves a registry from a YAML index, for offline runs
// and tests.
type FileSourceAdapter struct {
	SourceName string
	Path       string

	once     sync.Once
	packages map[string]types.RegistryIndexPackage
	loadErr  error
}

func NewFileSourceAdapter(name string, path string) *FileSourceAdapter {
	if strings.TrimSpace(name) == "" {
		name = path
	}
	return &FileSourceAdapter{SourceName: name, Path: path}
}

var _ ports.RegistrySource = (*FileSourceAdapter)(nil)

func (a *FileSourceAdapter) Name() string {
	return a.SourceName
}

func (a *FileSourceAdapter) ListVersions(ctx context.Context, packageID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	packages, err := a.load()
	if err != nil {
		return nil, err
	}
	entry, ok := packages[shared.NormalizePackageID(packageID)]
	if !ok || len(entry.Versions) == 0 {
		return nil, nil
	}
	return append([]string(nil), entry.Versions...), nil
}

// Dependencies reports ok=false when the package or the version is not in
// the index. A listed version without a dependencies entry has none.
func (a *FileSourceAdapter) Dependencies(ctx context.Context, packageID string, version string) ([]string, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	packages, err := a.load()
	if err != nil {
		return nil, false, err
	}
	entry, ok := packages[shared.NormalizePackageID(packageID)]
	if !ok {
		return nil, false, nil
	}
	want := shared.NormalizeFeedVersion(version)
	if deps, ok := entry.Dependencies[want]; ok {
		return append([]string{}, deps...), true, nil
	}
	for _, listed := range entry.Versions {
		if shared.NormalizeFeedVersion(listed) == want {
			return []string{}, true, nil
		}
	}
	return nil, false, nil
}

func (a *FileSourceAdapter) load() (map[string]types.RegistryIndexPackage, error) {
	a.once.Do(func() {
		data, err := os.ReadFile(a.Path)
		if err != nil {
			a.loadErr = errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("registry index file not found").
				WithCause(err)
			return
		}
		var idx types.RegistryIndexFile
		if err := yaml.Unmarshal(data, &idx); err != nil {
			a.loadErr = errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid registry index format").
				WithCause(err)
			return
		}
		a.packages = make(map[string]types.RegistryIndexPackage, len(idx.Packages))
		for _, id := range sortedKeys(idx.Packages) {
			entry := idx.Packages[id]
			key := shared.NormalizePackageID(id)
			merged := a.packages[key]
			merged.Versions = append(merged.Versions, entry.Versions...)
			if len(entry.Dependencies) > 0 && merged.Dependencies == nil {
				merged.Dependencies = map[string][]string{}
			}
			for _, version := range sortedKeys(entry.Dependencies) {
				normalized := shared.NormalizeFeedVersion(version)
				merged.Dependencies[normalized] = mergeDependencyIDs(merged.Dependencies[normalized], entry.Dependencies[version])
			}
			a.packages[key] = merged
		}
	})
	return a.packages, a.loadErr
}

// Dependency keys are stored normalized, so "1.0" and "1.0.0" share one
// entry holding the union of both lists.
func mergeDependencyIDs(existing []string, more []string) []string {
	out := append([]string{}, existing...)
	for _, id := range more {
		if !slices.ContainsFunc(out, func(seen string) bool { return strings.EqualFold(seen, id) }) {
			out = append(out, id)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
