package adapters

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

func writeProjectMap(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projects.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProjectMapFileAdapter_Load(t *testing.T) {
	path := writeProjectMap(t, `
target_platform: net48
projects:
  src/Web/Web.csproj:
    - id: Newtonsoft.Json
      version: "12.0.3"
  src/Core/Core.csproj:
    - id: Newtonsoft.Json
      version: "13.0.1"
    - id: System.Memory
      version: "4.5.4"
`)
	file, err := NewProjectMapFileAdapter().LoadProjectMap(path)
	require.NoError(t, err)
	assert.Equal(t, "net48", file.TargetPlatform)
	assert.Equal(t, []types.PackageIdentity{{ID: "Newtonsoft.Json", Version: "12.0.3"}}, file.Projects["src/Web/Web.csproj"])
	assert.Len(t, file.Projects["src/Core/Core.csproj"], 2)
}

func TestProjectMapFileAdapter_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantCode errbuilder.ErrCode
	}{
		{name: "empty path", path: "", wantCode: errbuilder.CodeInvalidArgument},
		{name: "missing", path: filepath.Join(t.TempDir(), "absent.yaml"), wantCode: errbuilder.CodeNotFound},
		{name: "malformed", path: writeProjectMap(t, "projects: {"), wantCode: errbuilder.CodeInvalidArgument},
		{name: "no projects", path: writeProjectMap(t, "target_platform: net48\n"), wantCode: errbuilder.CodeInvalidArgument},
		{name: "empty id", path: writeProjectMap(t, "projects:\n  a.csproj:\n    - version: \"1.0\"\n"), wantCode: errbuilder.CodeInvalidArgument},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProjectMapFileAdapter().LoadProjectMap(tc.path)
			require.Error(t, err)
			if diff := cmp.Diff(tc.wantCode, errbuilder.CodeOf(err)); diff != "" {
				t.Fatalf("unexpected error code (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProjectMapFileAdapter_WriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "projects.yaml")
	want := types.ProjectMapFile{
		TargetPlatform: "net472",
		Projects: map[string][]types.PackageIdentity{
			"src/App/App.csproj": {{ID: "NUnit", Version: "3.14.0"}},
		},
	}
	adapter := NewProjectMapFileAdapter()
	require.NoError(t, adapter.WriteProjectMap(path, want))

	got, err := adapter.LoadProjectMap(path)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("project map mismatch (-want +got):\n%s", diff)
	}

	err = adapter.WriteProjectMap(" ", want)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
