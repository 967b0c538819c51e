package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/dllforge/internal/compiler"
	"github.com/specialistvlad/dllforge/internal/diag"
	"github.com/specialistvlad/dllforge/internal/hcl_adapter"
	"github.com/specialistvlad/dllforge/internal/pipeline"
	"github.com/specialistvlad/dllforge/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingCompiler writes the joined source texts to the output path and
// records every invocation.
type recordingCompiler struct {
	calls []compiler.Invocation
	fail  bool
}

func (c *recordingCompiler) Compile(_ context.Context, inv compiler.Invocation) (*compiler.Output, error) {
	c.calls = append(c.calls, inv)
	if c.fail {
		return &compiler.Output{Diagnostics: diag.Diagnostics{{
			Severity: diag.Error,
			Code:     "CS1002",
			Message:  "; expected",
			Location: &diag.Location{File: inv.Sources[0].Path, Line: 1, Column: 1},
		}}}, nil
	}
	var b strings.Builder
	for _, s := range inv.Sources {
		b.WriteString(s.Text)
		b.WriteString("\n")
	}
	if err := os.WriteFile(inv.OutputPath, []byte(b.String()), 0o644); err != nil {
		return nil, err
	}
	return &compiler.Output{ArtifactPath: inv.OutputPath}, nil
}

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func persistedVersion(t *testing.T, configPath string) version.Version {
	t.Helper()
	m, err := hcl_adapter.NewLoader().Load(context.Background(), configPath)
	require.NoError(t, err)
	return m.Package.Version
}

const projectConfig = `
package "Pkg" {
  namespace = "Foo"
  version   = [0, 0, 0, 19]

  runtime {
    sources      = ["Assets/A.cs"]
    dependencies = ["Libs/Dep.dll"]
  }

  editor {
    sources = ["Assets/Editor/E.cs"]
  }

  export {
    files     = ["Assets/Plugins/Pkg/Pkg.dll", "Assets/Plugins/Pkg/Editor/Pkg.Editor.dll"]
    on_build  = true
    directory = "dist"
  }
}
`

func newProject(t *testing.T, cfg string) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	writeFile(t, dir, "Assets/A.cs", "namespace PLACEHOLDER { public class A {} }")
	writeFile(t, dir, "Assets/Editor/E.cs", "namespace PLACEHOLDER.Editor { class E {} }")
	writeFile(t, dir, "Libs/Dep.dll", "dep")
	configPath = writeFile(t, dir, "dllforge.hcl", cfg)
	return dir, configPath
}

func TestBuild_EndToEnd(t *testing.T) {
	// --- Arrange ---
	dir, configPath := newProject(t, projectConfig)
	fc := &recordingCompiler{}
	a, out, _ := SetupAppTest(t, configPath, WithCompiler(fc))

	// --- Act ---
	res, err := a.Build(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.True(t, res.Succeeded)
	assert.Equal(t, version.Version{0, 0, 1, 0}, res.Version)

	runtimeLib := filepath.Join(dir, "Assets", "Plugins", "Pkg", "Pkg.dll")
	editorLib := filepath.Join(dir, "Assets", "Plugins", "Pkg", "Editor", "Pkg.Editor.dll")
	assert.Equal(t, runtimeLib, res.RuntimeArtifactPath)
	assert.Equal(t, editorLib, res.EditorArtifactPath)
	data, err := os.ReadFile(runtimeLib)
	require.NoError(t, err)
	assert.Contains(t, string(data), "namespace Foo { public class A {} }")
	assert.Contains(t, string(data), `AssemblyVersion("0.0.1.0")`)

	require.Len(t, fc.calls, 2)
	assert.Contains(t, fc.calls[0].References, filepath.Join(dir, "Libs", "Dep.dll"))
	assert.Equal(t, fc.calls[0].OutputPath, fc.calls[1].References[0])

	assert.Equal(t, filepath.Join(dir, "dist", "Pkg.zip"), res.ArchivePath)
	assert.FileExists(t, res.ArchivePath)

	assert.Equal(t, version.Version{0, 0, 1, 0}, persistedVersion(t, configPath))
	assert.Equal(t, version.Version{0, 0, 1, 0}, a.Model().Package.Version)
	assert.Contains(t, out.String(), "runtime: "+runtimeLib)
	assert.Contains(t, out.String(), "build succeeded: Pkg 0.0.1.0")
}

func TestBuild_FailureKeepsVersion(t *testing.T) {
	_, configPath := newProject(t, projectConfig)
	a, out, _ := SetupAppTest(t, configPath, WithCompiler(&recordingCompiler{fail: true}))

	res, err := a.Build(context.Background())

	require.ErrorIs(t, err, ErrBuildFailed)
	require.NotNil(t, res)
	assert.False(t, res.Succeeded)
	assert.Empty(t, res.ArchivePath)
	assert.Equal(t, version.Version{0, 0, 0, 19}, persistedVersion(t, configPath))
	assert.Contains(t, out.String(), "CS1002")
	assert.Contains(t, out.String(), "build failed")
}

func TestBuild_PlacementFailureKeepsVersion(t *testing.T) {
	dir, configPath := newProject(t, projectConfig)
	writeFile(t, dir, "Assets/Plugins/Pkg", "in the way")
	a, out, _ := SetupAppTest(t, configPath, WithCompiler(&recordingCompiler{}))

	res, err := a.Build(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "placing runtime artifact")
	require.NotNil(t, res)
	assert.False(t, res.Succeeded)
	assert.Empty(t, res.ArchivePath)
	assert.Equal(t, version.Version{0, 0, 0, 19}, persistedVersion(t, configPath))
	assert.Equal(t, version.Version{0, 0, 0, 19}, a.Model().Package.Version)
	assert.Contains(t, out.String(), "build failed")
	assert.NotContains(t, out.String(), "build succeeded")
}

func TestBuild_NothingToCompileKeepsVersion(t *testing.T) {
	_, configPath := newProject(t, `package "Pkg" {
  version = [0, 0, 0, 3]
}
`)
	fc := &recordingCompiler{}
	a, out, _ := SetupAppTest(t, configPath, WithCompiler(fc))

	res, err := a.Build(context.Background())

	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	assert.Empty(t, fc.calls)
	assert.Equal(t, version.Version{0, 0, 0, 3}, persistedVersion(t, configPath))
	assert.Contains(t, out.String(), "runtime: skipped")
	assert.Contains(t, out.String(), "editor: skipped")
}

func TestBuild_PackagingFailure(t *testing.T) {
	_, configPath := newProject(t, `package "Pkg" {
  runtime {
    sources = ["Assets/A.cs"]
  }
  export {
    files    = ["Assets/Plugins/Pkg/Missing.dll"]
    on_build = true
  }
}
`)
	a, _, _ := SetupAppTest(t, configPath, WithCompiler(&recordingCompiler{}))

	res, err := a.Build(context.Background())

	require.ErrorIs(t, err, pipeline.ErrPackaging)
	require.NotNil(t, res)
	assert.True(t, res.Succeeded)
	assert.FileExists(t, res.RuntimeArtifactPath)
	assert.Equal(t, version.Version{0, 0, 0, 1}, persistedVersion(t, configPath))
}

func TestBuild_GUIDSources(t *testing.T) {
	dir, configPath := newProject(t, `package "Pkg" {
  runtime {
    sources = ["0123456789abcdef0123456789abcdef"]
  }
}

resolver {
  kind = "guid"
  root = "Assets"
}
`)
	writeFile(t, dir, "Assets/A.cs.meta", "fileFormatVersion: 2\nguid: 0123456789abcdef0123456789abcdef\n")
	fc := &recordingCompiler{}
	a, _, _ := SetupAppTest(t, configPath, WithCompiler(fc))

	res, err := a.Build(context.Background())

	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	require.Len(t, fc.calls, 1)
	assert.Equal(t, filepath.Join(dir, "Assets", "A.cs"), fc.calls[0].Sources[0].Path)
}

type recordingPublisher struct {
	archives []string
}

func (p *recordingPublisher) Publish(_ context.Context, archive string) (string, error) {
	p.archives = append(p.archives, archive)
	return "s3://packages/" + filepath.Base(archive), nil
}

func TestPackage_Standalone(t *testing.T) {
	dir, configPath := newProject(t, `package "Pkg" {
  export {
    files  = ["Libs/Dep.dll"]
    format = "tgz"
  }
}
`)
	pub := &recordingPublisher{}
	fc := &recordingCompiler{}
	a, out, _ := SetupAppTest(t, configPath, WithCompiler(fc), WithPublisher(pub))

	archive, published, err := a.Package(context.Background())

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Pkg.tgz"), archive)
	assert.FileExists(t, archive)
	assert.Equal(t, "s3://packages/Pkg.tgz", published)
	assert.Equal(t, []string{archive}, pub.archives)
	assert.Empty(t, fc.calls)
	assert.Contains(t, out.String(), "archive: "+archive)
}

func TestPackage_MissingFile(t *testing.T) {
	_, configPath := newProject(t, `package "Pkg" {
  export {
    files = ["nope.dll"]
  }
}
`)
	a, _, _ := SetupAppTest(t, configPath)

	_, _, err := a.Package(context.Background())

	require.ErrorIs(t, err, pipeline.ErrPackaging)
	require.ErrorIs(t, err, diag.ErrPackagingMissingFile)
}

func TestBump(t *testing.T) {
	_, configPath := newProject(t, projectConfig)
	a, out, _ := SetupAppTest(t, configPath)

	next, err := a.Bump(context.Background())

	require.NoError(t, err)
	assert.Equal(t, version.Version{0, 0, 1, 0}, next)
	assert.Equal(t, next, persistedVersion(t, configPath))
	assert.Equal(t, "0.0.0.19 -> 0.0.1.0\n", out.String())
}

func TestBump_Overflow(t *testing.T) {
	_, configPath := newProject(t, `package "Pkg" {
  version = [19, 19, 19, 19]
}
`)
	a, _, _ := SetupAppTest(t, configPath)

	v, err := a.Bump(context.Background())

	require.ErrorIs(t, err, diag.ErrVersionOverflow)
	assert.Equal(t, version.Version{19, 19, 19, 19}, v)
	assert.Equal(t, version.Version{19, 19, 19, 19}, persistedVersion(t, configPath))
}

func TestShow(t *testing.T) {
	dir, configPath := newProject(t, projectConfig)
	a, out, _ := SetupAppTest(t, configPath)

	require.NoError(t, a.Show())

	s := out.String()
	assert.Contains(t, s, "package: Pkg")
	assert.Contains(t, s, "namespace: Foo")
	assert.Contains(t, s, "placeholder: PLACEHOLDER")
	assert.Contains(t, s, "version: 0.0.0.19")
	assert.Contains(t, s, "next_version: 0.0.1.0")
	assert.Contains(t, s, "output_root: "+filepath.Join(dir, "Assets", "Plugins"))
	assert.Contains(t, s, "archive: "+filepath.Join(dir, "dist", "Pkg.zip"))
}

func TestNewApp_InvalidConfig(t *testing.T) {
	_, configPath := newProject(t, `package "Pkg" {
  version = [0, 99]
}
`)
	cfg := &Config{ConfigPath: configPath}

	_, err := NewApp(&SafeBuffer{}, &SafeBuffer{}, cfg, hcl_adapter.NewLoader(), hcl_adapter.NewVersionWriter())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestNewApp_PublishRequiresCredentials(t *testing.T) {
	_, configPath := newProject(t, `package "Pkg" {}
publish {
  endpoint = "localhost:9000"
  bucket   = "packages"
}
`)
	cfg := &Config{ConfigPath: configPath}

	_, err := NewApp(&SafeBuffer{}, &SafeBuffer{}, cfg, hcl_adapter.NewLoader(), hcl_adapter.NewVersionWriter())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuring publisher")
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	require.Error(t, err)

	cfg, err := NewConfig(Config{ConfigPath: DefaultConfigPath})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigPath, cfg.ConfigPath)
}
