package app

import "sdkmigrate/internal/types"

type VersionsRequest struct {
	PackageID         string
	IncludePrerelease bool
}

type VersionsResult struct {
	PackageID    string
	LatestStable string
	Latest       string
	Versions     []string
}

type ResolveAssemblyRequest struct {
	AssemblyName   string
	TargetPlatform string
}

type ResolveAssemblyResult struct {
	Found  bool
	Result types.PackageResolutionResult
}

type AssembliesRequest struct {
	PackageID      string
	Version        string
	TargetPlatform string
}

type AssembliesResult struct {
	Modules []string
}

type ClassifyRequest struct {
	InputPath string
}

type ClassifyResult struct {
	Projects   types.ProjectPackageMap
	Transitive []string
}

type ReconcileRequest struct {
	InputPath   string
	Strategy    string
	OutputDir   string
	Format      string
	Apply       bool
	// ApplyOutput is where the applied project map is written. Empty
	// rewrites InputPath.
	ApplyOutput string
}

type ReconcileResult struct {
	RunID          string
	ReportPath     string
	ProjectMapPath string
	Report         types.ReconcileReport
	Projects       types.ProjectPackageMap
	Applied        int
}

type ScanRequest struct {
	Root   string
	Output string
}

type ScanResult struct {
	ProjectMap     types.ProjectMapFile
	OutputPath     string
	PackagesConfig int
}
