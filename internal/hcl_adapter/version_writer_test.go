package hcl_adapter

import (
	"context"
	"os"
	"testing"

	"github.com/specialistvlad/dllforge/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteVersion_RoundTripsThroughLoader(t *testing.T) {
	// --- Arrange ---
	path := writeConfig(t, t.TempDir(), `# Build settings for Pkg.
package "Pkg" {
  namespace = "Foo" # keep
  version   = [0, 0, 0, 19]

  runtime {
    sources = ["A.cs"]
  }
}
`)
	ctx := context.Background()

	// --- Act ---
	err := NewVersionWriter().WriteVersion(ctx, path, version.Version{0, 0, 1, 0})

	// --- Assert ---
	require.NoError(t, err)
	model, err := NewLoader().Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, version.Version{0, 0, 1, 0}, model.Package.Version)
	assert.Equal(t, "Foo", model.Package.Namespace)
	assert.Equal(t, []string{"A.cs"}, model.Package.Runtime.Sources)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Build settings for Pkg.")
	assert.Contains(t, string(data), "# keep")
	assert.NoFileExists(t, path+".tmp")
}

func TestWriteVersion_AddsMissingAttribute(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "package \"Pkg\" {}\n")
	ctx := context.Background()

	require.NoError(t, NewVersionWriter().WriteVersion(ctx, path, version.Version{1, 2, 3, 4}))

	model, err := NewLoader().Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, version.Version{1, 2, 3, 4}, model.Package.Version)
}

func TestWriteVersion_Errors(t *testing.T) {
	ctx := context.Background()
	w := NewVersionWriter()

	t.Run("no package block", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "compiler {}\n")
		err := w.WriteVersion(ctx, path, version.Version{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no package block")
	})

	t.Run("invalid version", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "package \"Pkg\" {}\n")
		err := w.WriteVersion(ctx, path, version.Version{0, 0, 0, 20})
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		err := w.WriteVersion(ctx, "/nonexistent/dllforge.hcl", version.Version{})
		require.Error(t, err)
	})
}
