package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWorkspaceAdapter_FindProjects(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "src", "App", "App.csproj"), "<Project/>")
	touch(t, filepath.Join(root, "src", "Lib", "Lib.FSPROJ"), "<Project/>")
	touch(t, filepath.Join(root, "src", "App", "Program.cs"), "class P {}")

	paths, err := NewWorkspaceAdapter().FindProjects(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "src", "App", "App.csproj"),
		filepath.Join(root, "src", "Lib", "Lib.FSPROJ"),
	}, paths)
}

func TestWorkspaceAdapter_SkipsOutputDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"bin", "obj", "packages", ".git", ".vs"} {
		touch(t, filepath.Join(root, dir, "Stale", "Stale.csproj"), "<Project/>")
	}
	touch(t, filepath.Join(root, "Real", "Real.vbproj"), "<Project/>")

	paths, err := NewWorkspaceAdapter().FindProjects(root)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Contains(t, paths[0], "Real.vbproj")
}

func TestWorkspaceAdapter_Errors(t *testing.T) {
	_, err := NewWorkspaceAdapter().FindProjects("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace root is empty")

	_, err = NewWorkspaceAdapter().FindProjects(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func TestWorkspaceAdapter_EmptyWorkspaceReturnsNil(t *testing.T) {
	paths, err := NewWorkspaceAdapter().FindProjects(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, paths)
}
