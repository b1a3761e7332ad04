package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdkmigrate/internal/types"
)

func writeSolutionFile(t *testing.T, root string, rel string, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestSolution(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeSolutionFile(t, root, "src/A/A.csproj", `<Project ToolsVersion="15.0">
  <PropertyGroup><TargetFrameworkVersion>v4.8</TargetFrameworkVersion></PropertyGroup>
</Project>`)
	writeSolutionFile(t, root, "src/A/packages.config", `<packages>
  <package id="Newtonsoft.Json" version="12.0.3" targetFramework="net48" />
  <package id="Contoso.Web" version="2.1.0" targetFramework="net48" />
</packages>`)
	writeSolutionFile(t, root, "src/B/B.csproj", `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup><TargetFramework>net48</TargetFramework></PropertyGroup>
  <ItemGroup><PackageReference Include="Newtonsoft.Json" Version="13.0.1" /></ItemGroup>
</Project>`)
	writeSolutionFile(t, root, "src/B/obj/B.csproj.nuget.g.props", "<Project/>")
	return root
}

func TestScanBuildsProjectMap(t *testing.T) {
	ws := newTestWorkspace(t)
	svc := newTestService(t, ws.config())
	root := newTestSolution(t)
	output := filepath.Join(ws.dir, "scanned.yaml")

	result, err := svc.Scan(t.Context(), ScanRequest{Root: root, Output: output})
	require.NoError(t, err)

	want := types.ProjectMapFile{
		TargetPlatform: "net48",
		Projects: map[string][]types.PackageIdentity{
			"src/A/A.csproj": {
				{ID: "Newtonsoft.Json", Version: "12.0.3"},
				{ID: "Contoso.Web", Version: "2.1.0"},
			},
			"src/B/B.csproj": {{ID: "Newtonsoft.Json", Version: "13.0.1"}},
		},
	}
	if diff := cmp.Diff(want, result.ProjectMap); diff != "" {
		t.Fatalf("project map mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, result.PackagesConfig)
	assert.Equal(t, output, result.OutputPath)

	reconciled, err := svc.Reconcile(t.Context(), ReconcileRequest{InputPath: output, Strategy: "highest"})
	require.NoError(t, err)
	assert.Equal(t, "13.0.1", reconciled.Report.Resolution.ResolvedVersions["Newtonsoft.Json"])
}

func TestScanErrors(t *testing.T) {
	ws := newTestWorkspace(t)
	svc := newTestService(t, ws.config())

	tests := []struct {
		name string
		root string
		want errbuilder.ErrCode
	}{
		{name: "empty root", root: " ", want: errbuilder.CodeInvalidArgument},
		{name: "no projects", root: t.TempDir(), want: errbuilder.CodeNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Scan(t.Context(), ScanRequest{Root: tc.root})
			require.Error(t, err)
			if diff := cmp.Diff(tc.want, errbuilder.CodeOf(err)); diff != "" {
				t.Fatalf("unexpected error code (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDominantTarget(t *testing.T) {
	assert.Empty(t, dominantTarget(map[string]int{}))
	assert.Equal(t, "net472", dominantTarget(map[string]int{"net472": 2, "net8.0": 1}))
	assert.Equal(t, "net472", dominantTarget(map[string]int{"net8.0": 1, "net472": 1}))
}
