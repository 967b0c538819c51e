package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/dllforge/internal/ctxlog"
	"github.com/specialistvlad/dllforge/internal/diag"
	"github.com/specialistvlad/dllforge/internal/fsutil"
)

// Default command line conventions, matching mcs and csc.
const (
	DefaultCommand         = "mcs"
	DefaultOutputFlag      = "-out:"
	DefaultReferenceFlag   = "-r:"
	DefaultDocFlag         = "-doc:"
	DefaultWarnAsErrorFlag = "-warnaserror+"
)

// DefaultArgs builds a library rather than an executable.
var DefaultArgs = []string{"-target:library"}

// Exec runs an external compiler. Sources are written to a private scratch
// directory, passed as file arguments, and removed afterwards.
type Exec struct {
	Command string
	// Args are placed before the generated arguments.
	Args            []string
	OutputFlag      string
	ReferenceFlag   string
	DocFlag         string
	WarnAsErrorFlag string
	// Dir is the working directory of the compiler process. Empty means the
	// current directory.
	Dir string
	// Env, if non-nil, replaces the process environment.
	Env []string
}

// NewExec returns an Exec for command using the default conventions. An
// empty command selects DefaultCommand.
func NewExec(command string) *Exec {
	if command == "" {
		command = DefaultCommand
	}
	return &Exec{
		Command:         command,
		Args:            append([]string(nil), DefaultArgs...),
		OutputFlag:      DefaultOutputFlag,
		ReferenceFlag:   DefaultReferenceFlag,
		DocFlag:         DefaultDocFlag,
		WarnAsErrorFlag: DefaultWarnAsErrorFlag,
	}
}

// Compile implements Compiler.
func (e *Exec) Compile(ctx context.Context, inv Invocation) (*Output, error) {
	logger := ctxlog.FromContext(ctx)

	srcDir, err := os.MkdirTemp("", "dllforge-src-*")
	if err != nil {
		return nil, fmt.Errorf("creating source scratch directory: %w", err)
	}
	defer os.RemoveAll(srcDir)

	files := make(map[string]string, len(inv.Sources))
	paths := make([]string, 0, len(inv.Sources))
	for i, src := range inv.Sources {
		name := fmt.Sprintf("%03d_%s", i, filepath.Base(src.Path))
		path := filepath.Join(srcDir, name)
		if err := os.WriteFile(path, []byte(src.Text), 0o644); err != nil {
			return nil, fmt.Errorf("writing source %q: %w", src.Path, err)
		}
		files[path] = src.Path
		files[name] = src.Path
		paths = append(paths, path)
	}

	if err := fsutil.EnsureDir(filepath.Dir(inv.OutputPath)); err != nil {
		return nil, err
	}

	args := e.arguments(inv, paths)
	logger.Debug("Invoking compiler.", "command", e.Command, "arg_count", len(args), "source_count", len(paths))

	cmd := exec.CommandContext(ctx, e.Command, args...)
	cmd.Dir = e.Dir
	if e.Env != nil {
		cmd.Env = e.Env
	}
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	runErr := cmd.Run()
	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return nil, fmt.Errorf("running compiler %q: %w", e.Command, runErr)
	}

	out := &Output{Diagnostics: ParseDiagnostics(combined.Bytes(), files)}
	if exitErr != nil && !out.Diagnostics.HasErrors() {
		out.Diagnostics = append(out.Diagnostics, diag.Errorf("compiler exited with code %d: %s", exitErr.ExitCode(), lastLine(combined.String())))
	}
	if fsutil.FileExists(inv.OutputPath) {
		out.ArtifactPath = inv.OutputPath
	}
	if inv.Options.DocumentationPath != "" && fsutil.FileExists(inv.Options.DocumentationPath) {
		out.DocumentationPath = inv.Options.DocumentationPath
	}

	logger.Debug("Compiler finished.",
		"artifact", out.ArtifactPath,
		"errors", out.Diagnostics.Count(diag.Error),
		"warnings", out.Diagnostics.Count(diag.Warning),
	)
	return out, nil
}

func (e *Exec) arguments(inv Invocation, sourcePaths []string) []string {
	args := append([]string(nil), e.Args...)
	args = append(args, e.OutputFlag+inv.OutputPath)
	for _, ref := range inv.References {
		args = append(args, e.ReferenceFlag+ref)
	}
	if inv.Options.DocumentationPath != "" && e.DocFlag != "" {
		args = append(args, e.DocFlag+inv.Options.DocumentationPath)
	}
	if inv.Options.TreatWarningsAsErrors && e.WarnAsErrorFlag != "" {
		args = append(args, e.WarnAsErrorFlag)
	}
	return append(args, sourcePaths...)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
