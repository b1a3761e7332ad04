package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"sdkmigrate/internal/core"
)

func (s *Service) Versions(ctx context.Context, req VersionsRequest) (VersionsResult, error) {
	packageID := strings.TrimSpace(req.PackageID)
	if packageID == "" {
		return VersionsResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package id is required")
	}
	versions := s.Resolver.GetAllVersions(ctx, packageID, req.IncludePrerelease)
	if len(versions) == 0 {
		return VersionsResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no versions found for " + packageID)
	}
	result := VersionsResult{PackageID: packageID, Versions: versions}
	result.LatestStable, _ = s.Resolver.GetLatestStableVersion(ctx, packageID)
	result.Latest, _ = s.Resolver.GetLatestVersion(ctx, packageID, req.IncludePrerelease)
	return result, nil
}

func (s *Service) ResolveAssembly(ctx context.Context, req ResolveAssemblyRequest) (ResolveAssemblyResult, error) {
	name := strings.TrimSpace(req.AssemblyName)
	if name == "" {
		return ResolveAssemblyResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("assembly name is required")
	}
	target := strings.TrimSpace(req.TargetPlatform)
	if target != "" {
		if _, ok := core.ParseTargetFramework(target); !ok {
			return ResolveAssemblyResult{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unrecognized target platform: " + target)
		}
	}
	resolved, ok := s.Resolver.ResolveAssemblyToPackage(ctx, name, target)
	return ResolveAssemblyResult{Found: ok, Result: resolved}, nil
}

// Assemblies lists the modules a package provides for a target platform.
// Results are memoized for the cache TTL.
func (s *Service) Assemblies(ctx context.Context, req AssembliesRequest) (AssembliesResult, error) {
	packageID := strings.TrimSpace(req.PackageID)
	version := strings.TrimSpace(req.Version)
	target := strings.TrimSpace(req.TargetPlatform)
	if packageID == "" || version == "" || target == "" {
		return AssembliesResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package id, version and target platform are required")
	}
	if _, ok := core.ParseTargetFramework(target); !ok {
		return AssembliesResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unrecognized target platform: " + target)
	}
	key := strings.ToLower(packageID) + "@" + strings.ToLower(version) + "@" + strings.ToLower(target)
	if modules, ok := s.memo.Get(key); ok {
		return AssembliesResult{Modules: append([]string(nil), modules...)}, nil
	}
	modules := s.assemblies.AssembliesFor(ctx, packageID, version, target)
	s.memo.Add(key, modules)
	return AssembliesResult{Modules: append([]string(nil), modules...)}, nil
}

// Classify marks probable transitive declarations in a project map without
// resolving conflicts.
func (s *Service) Classify(_ context.Context, req ClassifyRequest) (ClassifyResult, error) {
	inputPath := strings.TrimSpace(req.InputPath)
	if inputPath == "" {
		return ClassifyResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project map path is required")
	}
	file, err := s.Projects.LoadProjectMap(inputPath)
	if err != nil {
		return ClassifyResult{}, err
	}
	classified := s.Classifier.ClassifyMap(projectMapFromFile(file))
	return ClassifyResult{Projects: classified, Transitive: transitiveIDs(classified)}, nil
}
