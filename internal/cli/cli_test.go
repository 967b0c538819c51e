package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/dllforge/internal/app"
	"github.com/specialistvlad/dllforge/internal/compiler"
	"github.com/specialistvlad/dllforge/internal/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T, cfg string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Assets", "A.cs"), []byte("namespace PLACEHOLDER {}"), 0o644))
	path := filepath.Join(dir, "dllforge.hcl")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func okCompiler() compiler.Compiler {
	return compiler.Func(func(_ context.Context, inv compiler.Invocation) (*compiler.Output, error) {
		if err := os.WriteFile(inv.OutputPath, []byte("lib"), 0o644); err != nil {
			return nil, err
		}
		return &compiler.Output{ArtifactPath: inv.OutputPath}, nil
	})
}

func failingCompiler() compiler.Compiler {
	return compiler.Func(func(_ context.Context, _ compiler.Invocation) (*compiler.Output, error) {
		return &compiler.Output{Diagnostics: diag.Diagnostics{diag.Errorf("boom")}}, nil
	})
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected *ExitError, got %T", err)
	return exitErr.Code
}

const buildConfig = `package "Pkg" {
  runtime {
    sources = ["Assets/A.cs"]
  }
}
`

func TestRun_ExitCodes(t *testing.T) {
	testCases := []struct {
		name     string
		config   string
		args     func(path string) []string
		compiler compiler.Compiler
		want     int
	}{
		{
			name:     "build succeeds",
			config:   buildConfig,
			args:     func(p string) []string { return []string{"build", "-c", p} },
			compiler: okCompiler(),
			want:     ExitOK,
		},
		{
			name:     "build fails",
			config:   buildConfig,
			args:     func(p string) []string { return []string{"build", "--config", p} },
			compiler: failingCompiler(),
			want:     ExitFailure,
		},
		{
			name: "packaging fails after build",
			config: `package "Pkg" {
  runtime {
    sources = ["Assets/A.cs"]
  }
  export {
    files    = ["missing.dll"]
    on_build = true
  }
}
`,
			args:     func(p string) []string { return []string{"build", "-c", p} },
			compiler: okCompiler(),
			want:     ExitPostBuild,
		},
		{
			name:   "invalid configuration",
			config: `package "Pkg" { version = [99] }`,
			args:   func(p string) []string { return []string{"show", "-c", p} },
			want:   ExitUsage,
		},
		{
			name:   "invalid log level",
			config: buildConfig,
			args:   func(p string) []string { return []string{"show", "-c", p, "--log-level", "loud"} },
			want:   ExitUsage,
		},
		{
			name:   "invalid log format",
			config: buildConfig,
			args:   func(p string) []string { return []string{"show", "-c", p, "--log-format", "xml"} },
			want:   ExitUsage,
		},
		{
			name:   "unknown flag",
			config: buildConfig,
			args:   func(p string) []string { return []string{"build", "--nope"} },
			want:   ExitUsage,
		},
		{
			name:   "unexpected argument",
			config: buildConfig,
			args:   func(p string) []string { return []string{"bump", "-c", p, "extra"} },
			want:   ExitUsage,
		},
		{
			name:   "missing config file",
			config: buildConfig,
			args:   func(p string) []string { return []string{"show", "-c", filepath.Join(filepath.Dir(p), "other.hcl")} },
			want:   ExitUsage,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			path := writeProject(t, tc.config)
			var opts []app.Option
			if tc.compiler != nil {
				opts = append(opts, app.WithCompiler(tc.compiler))
			}
			var out, errOut bytes.Buffer

			// --- Act ---
			err := Run(context.Background(), tc.args(path), &out, &errOut, opts...)

			// --- Assert ---
			assert.Equal(t, tc.want, exitCode(t, err), "stdout: %s\nstderr: %s", out.String(), errOut.String())
		})
	}
}

func TestRun_BuildReportsArtifacts(t *testing.T) {
	path := writeProject(t, buildConfig)
	var out, errOut bytes.Buffer

	err := Run(context.Background(), []string{"build", "-c", path, "--log-level", "debug", "--log-format", "json"}, &out, &errOut, app.WithCompiler(okCompiler()))

	require.NoError(t, err)
	lib := filepath.Join(filepath.Dir(path), "Assets", "Plugins", "Pkg", "Pkg.dll")
	assert.FileExists(t, lib)
	assert.Contains(t, out.String(), "runtime: "+lib)
	assert.Contains(t, out.String(), "editor: skipped")
	assert.Contains(t, errOut.String(), `"msg":"Build started."`)
}

func TestRun_BumpAndShow(t *testing.T) {
	path := writeProject(t, buildConfig)
	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), []string{"bump", "-c", path}, &out, &bytes.Buffer{}))
	assert.Equal(t, "0.0.0.0 -> 0.0.0.1\n", out.String())

	out.Reset()
	require.NoError(t, Run(context.Background(), []string{"show", "-c", path}, &out, &bytes.Buffer{}))
	assert.Contains(t, out.String(), "version: 0.0.0.1")
	assert.Contains(t, out.String(), "next_version: 0.0.0.2")
}

func TestRun_NoCommandPrintsHelp(t *testing.T) {
	var out bytes.Buffer

	err := Run(context.Background(), nil, &out, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "build")
}
