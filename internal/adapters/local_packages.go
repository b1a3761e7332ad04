package adapters

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"sdkmigrate/internal/ports"
	"sdkmigrate/internal/shared"
)

// LocalPackagesAdapter reads extracted packages from a packages folder. Both
// the global-packages layout ({root}/{id}/{version}) and the legacy
// packages.config layout ({root}/{id}.{version}) are recognised.
type LocalPackagesAdapter struct {
	Root string
}

func NewLocalPackagesAdapter(root string) LocalPackagesAdapter {
	return LocalPackagesAdapter{Root: root}
}

var _ ports.LocalPackagesPort = LocalPackagesAdapter{}

// LibFolders maps each lib/ subfolder to the module names it contains. Files
// directly under lib/ are reported under the empty folder name.
func (a LocalPackagesAdapter) LibFolders(packageID string, version string) (map[string][]string, error) {
	if strings.TrimSpace(a.Root) == "" {
		return nil, nil
	}
	libDir, ok := a.findLibDir(packageID, version)
	if !ok {
		return nil, nil
	}
	folders := map[string][]string{}
	err := filepath.WalkDir(libDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		module, ok := moduleName(d.Name())
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(libDir, filepath.Dir(path))
		if err != nil {
			return err
		}
		folder := ""
		if rel != "." {
			folder = strings.ToLower(strings.SplitN(filepath.ToSlash(rel), "/", 2)[0])
		}
		folders[folder] = append(folders[folder], module)
		return nil
	})
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to scan package lib folder").
			WithCause(err)
	}
	for folder, modules := range folders {
		sort.Strings(modules)
		folders[folder] = slices.Compact(modules)
	}
	return folders, nil
}

func (a LocalPackagesAdapter) findLibDir(packageID string, version string) (string, bool) {
	id := strings.TrimSpace(packageID)
	ver := strings.TrimSpace(version)
	candidates := []string{
		filepath.Join(a.Root, shared.NormalizePackageID(id), shared.NormalizeFeedVersion(ver), "lib"),
		filepath.Join(a.Root, id+"."+ver, "lib"),
		filepath.Join(a.Root, id+"."+shared.NormalizeFeedVersion(ver), "lib"),
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func moduleName(file string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(file))
	if ext != ".dll" && ext != ".exe" {
		return "", false
	}
	return strings.TrimSuffix(file, filepath.Ext(file)), true
}
