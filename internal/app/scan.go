package app

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"sdkmigrate/internal/types"
)

// Scan builds a project map from the project files below req.Root. Project
// keys are relative to the root with forward slashes. With req.Output set
// the map is also written there for later reconcile runs.
func (s *Service) Scan(ctx context.Context, req ScanRequest) (ScanResult, error) {
	root := strings.TrimSpace(req.Root)
	if root == "" {
		return ScanResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("scan root is required")
	}
	paths, err := s.Workspace.FindProjects(root)
	if err != nil {
		return ScanResult{}, err
	}
	if len(paths) == 0 {
		return ScanResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no project files found under " + root)
	}

	infos := make([]types.ProjectFileInfo, len(paths))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.Config.Reconcile.MaxConcurrency)
	for idx, path := range paths {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			info, err := s.Files.ParseProject(path)
			if err != nil {
				return err
			}
			infos[idx] = info
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return ScanResult{}, err
	}

	file := types.ProjectMapFile{Projects: map[string][]types.PackageIdentity{}}
	result := ScanResult{}
	targets := map[string]int{}
	for _, info := range infos {
		file.Projects[projectKey(root, info.Path)] = info.Packages
		if info.PackagesConfig {
			result.PackagesConfig++
		}
		if info.TargetPlatform != "" {
			targets[info.TargetPlatform]++
		}
	}
	file.TargetPlatform = dominantTarget(targets)
	result.ProjectMap = file

	if output := strings.TrimSpace(req.Output); output != "" {
		if err := s.Projects.WriteProjectMap(output, file); err != nil {
			return ScanResult{}, err
		}
		result.OutputPath = output
	}

	log.Ctx(ctx).Info().
		Str("root", root).
		Int("projects", len(file.Projects)).
		Int("packages_config", result.PackagesConfig).
		Str("target", file.TargetPlatform).
		Msg("workspace scanned")
	return result, nil
}

func projectKey(root string, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// dominantTarget returns the most used target platform, the lowest name on
// a tie.
func dominantTarget(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	best := ""
	for _, name := range names {
		if best == "" || counts[name] > counts[best] {
			best = name
		}
	}
	return best
}
