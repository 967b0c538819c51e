package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/dllforge/internal/ctxlog"
	"github.com/specialistvlad/dllforge/internal/diag"
	"github.com/specialistvlad/dllforge/internal/pipeline"
	"github.com/specialistvlad/dllforge/internal/version"
)

// ErrBuildFailed is returned when a build finished with error diagnostics.
var ErrBuildFailed = errors.New("build failed")

// Request derives the build request from the loaded configuration.
func (a *App) Request() pipeline.Request {
	m := a.model
	return pipeline.Request{
		PackageName:         m.Package.Name,
		NamespaceName:       m.Package.Namespace,
		Placeholder:         m.Package.Placeholder,
		Version:             m.Package.Version,
		OutputRoot:          m.Abs(m.Package.OutputRoot),
		RuntimeSources:      m.Package.Runtime.Sources,
		EditorSources:       m.Package.Editor.Sources,
		RuntimeDependencies: m.AbsAll(m.Package.Runtime.Dependencies),
		EditorDependencies:  m.AbsAll(m.Package.Editor.Dependencies),
		ExportFiles:         m.Package.Export.Files,
		PackageOnBuild:      m.Package.Export.OnBuild,
	}
}

// Build compiles both passes, places the artifacts and, when configured,
// packages them. The incremented version is written back to the
// configuration only when something was compiled and the build succeeded.
// The result is reported to the output writer and returned even when an
// error is.
func (a *App) Build(ctx context.Context) (*pipeline.Result, error) {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Build method started.")

	res, err := a.pipeline.Run(ctx, a.Request())
	if res == nil {
		return nil, err
	}
	a.report(res)

	if res.Succeeded && res.Compiled() {
		if werr := a.persistVersion(ctx, res.Version); werr != nil {
			return res, errors.Join(err, werr)
		}
	}
	if err != nil {
		return res, err
	}
	if !res.Succeeded {
		return res, fmt.Errorf("%w: %d error(s)", ErrBuildFailed, res.Diagnostics.Count(diag.Error))
	}

	logger.Debug("App.Build method finished.")
	return res, nil
}

// Package writes the archive from the export list without compiling.
func (a *App) Package(ctx context.Context) (archive, published string, err error) {
	ctx = a.withLogger(ctx)
	archive, published, err = a.pipeline.Package(ctx, a.Request())
	if archive != "" {
		fmt.Fprintf(a.outW, "archive: %s\n", archive)
	}
	if published != "" {
		fmt.Fprintf(a.outW, "published: %s\n", published)
	}
	return archive, published, err
}

// Bump increments the persisted version without building.
func (a *App) Bump(ctx context.Context) (version.Version, error) {
	ctx = a.withLogger(ctx)
	current := a.model.Package.Version
	next, err := version.Increment(current)
	if err != nil {
		return current, err
	}
	if err := a.persistVersion(ctx, next); err != nil {
		return current, err
	}
	fmt.Fprintf(a.outW, "%s -> %s\n", current, next)
	return next, nil
}

func (a *App) persistVersion(ctx context.Context, v version.Version) error {
	logger := ctxlog.FromContext(ctx)
	if a.versions == nil {
		logger.Warn("No version writer configured, version not persisted.", "version", v.String())
		return nil
	}
	if err := a.versions.WriteVersion(ctx, a.model.Path, v); err != nil {
		return fmt.Errorf("persisting version %s: %w", v, err)
	}
	a.model.Package.Version = v
	logger.Info("Version persisted.", "path", a.model.Path, "version", v.String())
	return nil
}
