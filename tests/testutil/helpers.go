// Package testutil provides shared fixtures for the integration tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// RegistryIndex is a small offline feed with one conflicting package and
// one package that only some projects reference.
const RegistryIndex = `
packages:
  Newtonsoft.Json:
    versions: ["12.0.3", "13.0.1", "13.0.3"]
  Contoso.Web:
    versions: ["1.0.0", "2.1.0"]
    dependencies:
      "2.1.0": ["Contoso.Logging"]
  Contoso.Logging:
    versions: ["1.0.0"]
`

// ProjectMap references Newtonsoft.Json at two versions across projects.
const ProjectMap = `
projects:
  src/App/App.csproj:
    - id: Newtonsoft.Json
      version: "12.0.3"
    - id: Contoso.Web
      version: "2.1.0"
    - id: Contoso.Logging
      version: "1.0.0"
  src/Lib/Lib.csproj:
    - id: Newtonsoft.Json
      version: "13.0.1"
`

// WriteFile writes content under dir and returns the absolute path.
func WriteFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
