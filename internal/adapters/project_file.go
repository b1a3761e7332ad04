package adapters

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"sdkmigrate/internal/ports"
	"sdkmigrate/internal/types"
)

const packagesConfigName = "packages.config"

// ProjectFileAdapter reads MSBuild project files. Parsed results are kept
// until the file's modification time changes.
type ProjectFileAdapter struct {
	mu    sync.Mutex
	cache map[string]projectFileCacheEntry
}

func NewProjectFileAdapter() *ProjectFileAdapter {
	return &ProjectFileAdapter{cache: map[string]projectFileCacheEntry{}}
}

var _ ports.ProjectFilePort = (*ProjectFileAdapter)(nil)

type projectXML struct {
	PropertyGroups []propertyGroup `xml:"PropertyGroup"`
	ItemGroups     []itemGroup     `xml:"ItemGroup"`
}

type propertyGroup struct {
	TargetFramework        string `xml:"TargetFramework"`
	TargetFrameworks       string `xml:"TargetFrameworks"`
	TargetFrameworkVersion string `xml:"TargetFrameworkVersion"`
}

type itemGroup struct {
	PackageReferences []packageReference `xml:"PackageReference"`
}

// Version may be an attribute or a child element.
type packageReference struct {
	Include      string `xml:"Include,attr"`
	VersionAttr  string `xml:"Version,attr"`
	VersionChild string `xml:"Version"`
}

type packagesConfigXML struct {
	Packages []packagesConfigEntry `xml:"package"`
}

type packagesConfigEntry struct {
	ID              string `xml:"id,attr"`
	Version         string `xml:"version,attr"`
	TargetFramework string `xml:"targetFramework,attr"`
}

type projectFileCacheEntry struct {
	modTime time.Time
	info    types.ProjectFileInfo
}

// ParseProject returns the project's target platform and package
// references. A packages.config next to the project takes precedence over
// PackageReference items, matching how a pre-SDK project restores.
func (a *ProjectFileAdapter) ParseProject(path string) (types.ProjectFileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return types.ProjectFileInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read project file").
			WithCause(err)
	}
	a.mu.Lock()
	if entry, ok := a.cache[path]; ok && entry.modTime.Equal(stat.ModTime()) {
		a.mu.Unlock()
		return entry.info, nil
	}
	a.mu.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		return types.ProjectFileInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read project file").
			WithCause(err)
	}
	var project projectXML
	if err := xml.Unmarshal(content, &project); err != nil {
		return types.ProjectFileInfo{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse project file: " + filepath.Base(path)).
			WithCause(err)
	}

	info := types.ProjectFileInfo{
		Path:           path,
		TargetPlatform: projectTargetPlatform(project),
	}
	configPath := filepath.Join(filepath.Dir(path), packagesConfigName)
	packages, target, ok, err := readPackagesConfig(configPath)
	if err != nil {
		return types.ProjectFileInfo{}, err
	}
	if ok {
		info.Packages = packages
		info.PackagesConfig = true
		if info.TargetPlatform == "" {
			info.TargetPlatform = target
		}
	} else {
		info.Packages = collectPackageReferences(project)
	}

	a.mu.Lock()
	a.cache[path] = projectFileCacheEntry{modTime: stat.ModTime(), info: info}
	a.mu.Unlock()
	return info, nil
}

func collectPackageReferences(project projectXML) []types.PackageIdentity {
	var packages []types.PackageIdentity
	for _, group := range project.ItemGroups {
		for _, ref := range group.PackageReferences {
			id := strings.TrimSpace(ref.Include)
			if id == "" {
				continue
			}
			version := strings.TrimSpace(ref.VersionAttr)
			if version == "" {
				version = strings.TrimSpace(ref.VersionChild)
			}
			if version == "" {
				version = types.WildcardVersion
			}
			packages = append(packages, types.PackageIdentity{ID: id, Version: version})
		}
	}
	return packages
}

func readPackagesConfig(path string) ([]types.PackageIdentity, string, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", false, nil
		}
		return nil, "", false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read packages.config").
			WithCause(err)
	}
	var config packagesConfigXML
	if err := xml.Unmarshal(content, &config); err != nil {
		return nil, "", false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse packages.config").
			WithCause(err)
	}
	var packages []types.PackageIdentity
	target := ""
	for _, entry := range config.Packages {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			continue
		}
		version := strings.TrimSpace(entry.Version)
		if version == "" {
			version = types.WildcardVersion
		}
		packages = append(packages, types.PackageIdentity{ID: id, Version: version})
		if target == "" {
			target = strings.ToLower(strings.TrimSpace(entry.TargetFramework))
		}
	}
	return packages, target, true, nil
}

// projectTargetPlatform picks the first declared framework. Legacy
// TargetFrameworkVersion values such as v4.7.2 become net472.
func projectTargetPlatform(project projectXML) string {
	for _, group := range project.PropertyGroups {
		if value := strings.TrimSpace(group.TargetFramework); value != "" {
			return strings.ToLower(value)
		}
		if value := strings.TrimSpace(group.TargetFrameworks); value != "" {
			first, _, _ := strings.Cut(value, ";")
			return strings.ToLower(strings.TrimSpace(first))
		}
		if value := strings.TrimSpace(group.TargetFrameworkVersion); value != "" {
			return "net" + strings.ReplaceAll(strings.TrimPrefix(strings.ToLower(value), "v"), ".", "")
		}
	}
	return ""
}
