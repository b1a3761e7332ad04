package app

import (
	"context"
	"sort"
	"strings"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"sdkmigrate/internal/policies"
	"sdkmigrate/internal/types"
)

// Reconcile loads a project map, warms the resolver for every declared
// package, marks probable transitive declarations, settles version conflicts
// and writes a report. With Apply set the resolution is written back into
// the project map, which is then saved to ApplyOutput or over InputPath.
func (s *Service) Reconcile(ctx context.Context, req ReconcileRequest) (ReconcileResult, error) {
	inputPath := strings.TrimSpace(req.InputPath)
	if inputPath == "" {
		return ReconcileResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project map path is required")
	}
	strategy, err := policies.ParseConflictStrategy(req.Strategy)
	if err != nil {
		return ReconcileResult{}, err
	}
	file, err := s.Projects.LoadProjectMap(inputPath)
	if err != nil {
		return ReconcileResult{}, err
	}
	projects := projectMapFromFile(file)
	runID := uuid.NewString()
	assert.NotEmpty(ctx, runID, "run id must be set")
	logger := log.Ctx(ctx).With().Str("run", runID).Logger()

	deps, err := s.discover(ctx, projects)
	if err != nil {
		return ReconcileResult{}, err
	}
	classifier := s.Classifier
	if len(deps) > 0 {
		classifier = classifier.WithDependencies(deps)
	}
	classified := classifier.ClassifyMap(projects)
	transitive := transitiveIDs(classified)

	conflicts := s.Conflicts.DetectConflicts(classified)
	resolution := s.Conflicts.ResolveConflicts(ctx, conflicts, strategy)
	applied := 0
	if req.Apply {
		applied = s.Conflicts.ApplyResolution(resolution, classified)
	}

	report := types.ReconcileReport{
		RunID:       runID,
		Strategy:    strategy,
		GeneratedAt: s.Clock.Now().UTC(),
		Transitive:  transitive,
		Conflicts:   conflicts,
		Resolution:  resolution,
		Cache:       types.NewCacheReport(s.CacheStats()),
	}
	result := ReconcileResult{
		RunID:    runID,
		Report:   report,
		Projects: classified,
		Applied:  applied,
	}
	if outputDir := strings.TrimSpace(req.OutputDir); outputDir != "" {
		path, err := s.Reports(outputDir).WriteReport(report, req.Format)
		if err != nil {
			return ReconcileResult{}, err
		}
		result.ReportPath = path
	}
	if req.Apply {
		target := strings.TrimSpace(req.ApplyOutput)
		if target == "" {
			target = inputPath
		}
		if err := s.Projects.WriteProjectMap(target, projectMapToFile(file.TargetPlatform, classified)); err != nil {
			return ReconcileResult{}, err
		}
		result.ProjectMapPath = target
	}

	logger.Info().
		Int("projects", len(classified)).
		Int("transitive", len(transitive)).
		Int("conflicts", len(conflicts)).
		Int("updates", len(resolution.ProjectsNeedingUpdate)).
		Int("applied", applied).
		Msg("reconcile completed")
	return result, nil
}

// discover queries the resolver for every declared package with at most
// reconcile.max_concurrency projects in flight. With
// reconcile.fetch_dependencies it also returns each package's dependency
// ids keyed by package id.
func (s *Service) discover(ctx context.Context, projects types.ProjectPackageMap) (map[string][]string, error) {
	var (
		mu   sync.Mutex
		deps = map[string][]string{}
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.Config.Reconcile.MaxConcurrency)
	for _, path := range sortedPaths(projects) {
		refs := projects[path]
		group.Go(func() error {
			for _, ref := range refs {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				version := strings.TrimSpace(ref.Version)
				if types.IsWildcardVersion(version) {
					latest, ok := s.Resolver.GetLatestStableVersion(groupCtx, ref.PackageID)
					if !ok {
						continue
					}
					version = latest
				} else {
					s.Resolver.GetAllVersions(groupCtx, ref.PackageID, false)
				}
				if !s.Config.Reconcile.FetchDependencies {
					continue
				}
				children, ok := s.Resolver.GetPackageDependencies(groupCtx, ref.PackageID, version)
				if !ok || len(children) == 0 {
					continue
				}
				mu.Lock()
				key := strings.ToLower(strings.TrimSpace(ref.PackageID))
				deps[key] = append(deps[key], children...)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("package discovery interrupted").
			WithCause(err)
	}
	return deps, nil
}

func projectMapFromFile(file types.ProjectMapFile) types.ProjectPackageMap {
	projects := make(types.ProjectPackageMap, len(file.Projects))
	for path, packages := range file.Projects {
		refs := make([]types.ProjectPackageReference, 0, len(packages))
		for _, pkg := range packages {
			refs = append(refs, types.ProjectPackageReference{
				ProjectPath: path,
				PackageID:   strings.TrimSpace(pkg.ID),
				Version:     strings.TrimSpace(pkg.Version),
			})
		}
		projects[path] = refs
	}
	return projects
}

func projectMapToFile(targetPlatform string, projects types.ProjectPackageMap) types.ProjectMapFile {
	file := types.ProjectMapFile{
		TargetPlatform: targetPlatform,
		Projects:       make(map[string][]types.PackageIdentity, len(projects)),
	}
	for path, refs := range projects {
		packages := make([]types.PackageIdentity, 0, len(refs))
		for _, ref := range refs {
			packages = append(packages, types.PackageIdentity{ID: ref.PackageID, Version: ref.Version})
		}
		file.Projects[path] = packages
	}
	return file
}

// transitiveIDs lists the ids marked transitive in at least one project.
func transitiveIDs(projects types.ProjectPackageMap) []string {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, path := range sortedPaths(projects) {
		for _, ref := range projects[path] {
			key := strings.ToLower(ref.PackageID)
			if _, ok := seen[key]; ok || !ref.IsTransitive {
				continue
			}
			seen[key] = struct{}{}
			ids = append(ids, ref.PackageID)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return strings.ToLower(ids[i]) < strings.ToLower(ids[j])
	})
	return ids
}

func sortedPaths(projects types.ProjectPackageMap) []string {
	paths := make([]string, 0, len(projects))
	for path := range projects {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
