package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/dllforge/internal/compiler"
	"github.com/specialistvlad/dllforge/internal/ctxlog"
	"github.com/specialistvlad/dllforge/internal/diag"
	"github.com/specialistvlad/dllforge/internal/fsutil"
	"github.com/specialistvlad/dllforge/internal/packager"
	"github.com/specialistvlad/dllforge/internal/placement"
	"github.com/specialistvlad/dllforge/internal/publish"
	"github.com/specialistvlad/dllforge/internal/resolver"
	"github.com/specialistvlad/dllforge/internal/templater"
	"github.com/specialistvlad/dllforge/internal/version"
)

// DefaultLibraryExtension is the artifact extension when none is configured.
const DefaultLibraryExtension = "dll"

var (
	// ErrPackaging wraps failures of the packaging stage. Artifacts placed
	// before the failure are kept.
	ErrPackaging = errors.New("packaging failed")
	// ErrPublishing wraps failures uploading the archive.
	ErrPublishing = errors.New("publishing failed")
)

// HostAssemblies are the host environment's libraries every pass links
// against. Empty paths are not referenced.
type HostAssemblies struct {
	Engine string
	Editor string
}

// Refresher is told once per build, after placement, which files were
// written so the host can re-index them. It has no result.
type Refresher interface {
	Refresh(ctx context.Context, paths []string)
}

// RefreshFunc adapts a function to the Refresher interface.
type RefreshFunc func(ctx context.Context, paths []string)

// Refresh calls f.
func (f RefreshFunc) Refresh(ctx context.Context, paths []string) { f(ctx, paths) }

// Pipeline holds the collaborators shared by every build.
type Pipeline struct {
	Compiler compiler.Compiler
	// Resolver maps source handles to paths. Nil treats handles as paths.
	Resolver resolver.Resolver
	Host     HostAssemblies

	LibraryExtension string
	// Documentation requests an XML documentation file next to each library.
	Documentation bool
	// StampTemplate renders the version source fragment; empty selects
	// version.DefaultStampTemplate.
	StampTemplate string
	// ScratchDir is where compiler output is staged. Empty selects the
	// system temporary directory.
	ScratchDir string

	Refresher Refresher
	// Packager is used when a request asks for packaging. Nil disables it.
	Packager *packager.Packager
	// Publisher uploads the archive after packaging. Nil disables it.
	Publisher publish.Publisher
}

// New returns a Pipeline with default settings.
func New(c compiler.Compiler, r resolver.Resolver) *Pipeline {
	return &Pipeline{
		Compiler:         c,
		Resolver:         r,
		LibraryExtension: DefaultLibraryExtension,
	}
}

// passRun couples a pass's public result with the compiler's raw output.
type passRun struct {
	result PassResult
	output *compiler.Output
}

// Run executes one build. Compile problems are reported in the Result, not
// as an error; an error means the build could not be carried out or a
// post-build stage failed. When a post-build stage fails the Result is
// still returned alongside the error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx, logger := ctxlog.With(ctx, "package", req.PackageName)
	logger.Debug("Build started.", "version", req.Version.String())

	res := &Result{}
	next, err := version.Increment(req.Version)
	if err != nil {
		if !errors.Is(err, diag.ErrVersionOverflow) {
			return nil, err
		}
		logger.Warn("Version counter saturated.", "version", next.String())
		res.Diagnostics = append(res.Diagnostics, diag.Warningf("%v: keeping version %s", err, next))
	}
	res.Version = next

	scratch, err := os.MkdirTemp(p.ScratchDir, "dllforge-build-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	// The editor pass references whatever path the runtime pass reported,
	// so the runtime pass must finish first.
	runtime := p.compilePass(ctx, Runtime, req, next, scratch, "")
	runtimeRef := ""
	if runtime.output != nil {
		runtimeRef = runtime.output.ArtifactPath
	}
	editor := p.compilePass(ctx, Editor, req, next, scratch, runtimeRef)

	res.Succeeded = runtime.result.Succeeded() && editor.result.Succeeded()
	res.Diagnostics = append(res.Diagnostics, runtime.result.Diagnostics...)
	res.Diagnostics = append(res.Diagnostics, editor.result.Diagnostics...)

	placer := placement.New(req.OutputRoot, req.PackageName)
	var written []string
	for _, run := range []*passRun{&runtime, &editor} {
		placed, err := p.placePass(ctx, placer, run)
		if err != nil {
			logger.Error("Placement failed.", "error", err)
			res.Succeeded = false
			res.Diagnostics = append(res.Diagnostics, diag.Errorf("%v", err))
			fillPasses(res, &runtime, &editor)
			return res, err
		}
		written = append(written, placed...)
	}
	fillPasses(res, &runtime, &editor)

	if p.Refresher != nil {
		logger.Debug("Notifying host of placed files.", "count", len(written))
		p.Refresher.Refresh(ctx, written)
	}

	if res.Succeeded {
		logger.Info("Build succeeded.", "version", res.Version.String(),
			"warnings", res.Diagnostics.Count(diag.Warning))
	} else {
		logger.Error("Build failed.", "errors", res.Diagnostics.Count(diag.Error))
		return res, nil
	}

	if !req.PackageOnBuild || len(req.ExportFiles) == 0 || p.Packager == nil {
		logger.Debug("Packaging not requested.", "on_build", req.PackageOnBuild, "export_files", len(req.ExportFiles))
		return res, nil
	}
	res.ArchivePath, res.PublishedAs, err = p.Package(ctx, req)
	return res, err
}

func fillPasses(res *Result, runtime, editor *passRun) {
	res.Runtime = runtime.result
	res.Editor = editor.result
	res.RuntimeArtifactPath = runtime.result.ArtifactPath
	res.EditorArtifactPath = editor.result.ArtifactPath
}

// Package builds the archive from req.ExportFiles without compiling, then
// publishes it when a Publisher is configured.
func (p *Pipeline) Package(ctx context.Context, req Request) (archive, published string, err error) {
	logger := ctxlog.FromContext(ctx)
	if p.Packager == nil {
		return "", "", fmt.Errorf("%w: no packager configured", ErrPackaging)
	}
	archive, err = p.Packager.Package(ctx, req.PackageName, req.ExportFiles)
	if err != nil {
		logger.Error("Packaging failed.", "error", err)
		return "", "", fmt.Errorf("%w: %w", ErrPackaging, err)
	}
	if p.Publisher == nil {
		return archive, "", nil
	}
	published, err = p.Publisher.Publish(ctx, archive)
	if err != nil {
		logger.Error("Publishing failed.", "archive", archive, "error", err)
		return archive, "", fmt.Errorf("%w: %w", ErrPublishing, err)
	}
	return archive, published, nil
}

func (p *Pipeline) compilePass(ctx context.Context, pass Pass, req Request, v version.Version, scratch, runtimeArtifact string) passRun {
	ctx, logger := ctxlog.With(ctx, "pass", pass.String())
	run := passRun{result: PassResult{Pass: pass}}

	handles := req.sources(pass)
	if len(handles) == 0 {
		logger.Debug("No sources, skipping pass.")
		run.result.Skipped = true
		return run
	}

	var ds diag.Diagnostics
	refs, refDiags := p.references(pass, req, runtimeArtifact)
	ds = append(ds, refDiags...)
	run.result.References = refs

	sources, srcDiags := p.readSources(handles)
	ds = append(ds, srcDiags...)
	if len(sources) == 0 {
		logger.Error("No source could be read, pass not compiled.")
		run.result.Diagnostics = ds
		return run
	}
	sources = templater.SubstituteAll(sources, req.Placeholder, req.NamespaceName)
	logger.Debug("Sources templated.", "count", len(sources), "placeholder", req.Placeholder, "namespace", req.NamespaceName)

	stamp, err := version.Stamp(p.StampTemplate, version.StampData{
		Version:   v,
		Package:   req.PackageName,
		Namespace: req.NamespaceName,
		Pass:      pass.String(),
	})
	if err != nil {
		ds = append(ds, diag.Errorf("%v", err))
	} else {
		sources = append(sources, templater.Source{
			Path: "VersionInfo.g" + filepath.Ext(sources[0].Path),
			Text: stamp,
		})
	}

	outDir := filepath.Join(scratch, pass.String())
	if err := fsutil.EnsureDir(outDir); err != nil {
		ds = append(ds, diag.Errorf("%s pass: %v", pass, err))
		run.result.Diagnostics = ds
		return run
	}
	out := filepath.Join(outDir, ArtifactName(req.PackageName, pass, p.libraryExtension()))
	inv := compiler.Invocation{
		OutputPath: out,
		References: refs,
		Sources:    sources,
	}
	if p.Documentation {
		inv.Options.DocumentationPath = strings.TrimSuffix(out, filepath.Ext(out)) + ".xml"
	}

	logger.Debug("Compiling pass.", "output", out, "references", len(refs), "sources", len(sources))
	output, err := p.Compiler.Compile(ctx, inv)
	if err != nil {
		logger.Error("Compiler could not be run.", "error", err)
		ds = append(ds, diag.Errorf("%s pass: %v", pass, err))
		run.result.Diagnostics = ds
		return run
	}
	run.output = output
	ds = append(ds, output.Diagnostics...)
	run.result.Diagnostics = ds

	if ds.HasErrors() {
		logger.Error("Pass failed.", "errors", ds.Count(diag.Error), "warnings", ds.Count(diag.Warning))
	} else {
		logger.Info("Pass compiled.", "artifact", output.ArtifactPath, "warnings", ds.Count(diag.Warning))
	}
	return run
}

// references builds the pass's reference list. Dependencies that do not
// exist are reported but still passed on, leaving the authoritative
// failure to the compiler.
func (p *Pipeline) references(pass Pass, req Request, runtimeArtifact string) ([]string, diag.Diagnostics) {
	var refs []string
	var checked []string
	if pass == Editor && runtimeArtifact != "" {
		refs = append(refs, runtimeArtifact)
	}
	if p.Host.Engine != "" {
		refs = append(refs, p.Host.Engine)
		checked = append(checked, p.Host.Engine)
	}
	if pass == Editor && p.Host.Editor != "" {
		refs = append(refs, p.Host.Editor)
		checked = append(checked, p.Host.Editor)
	}
	refs = append(refs, req.RuntimeDependencies...)
	checked = append(checked, req.RuntimeDependencies...)
	if pass == Editor {
		refs = append(refs, req.EditorDependencies...)
		checked = append(checked, req.EditorDependencies...)
	}

	var ds diag.Diagnostics
	for _, ref := range dedupe(checked) {
		if _, err := os.Stat(ref); err != nil {
			ds = append(ds, diag.Diagnostic{
				Severity: diag.Error,
				Message:  fmt.Sprintf("%v: %s", diag.ErrMissingReference, ref),
			})
		}
	}
	return dedupe(refs), ds
}

func (p *Pipeline) readSources(handles []string) ([]templater.Source, diag.Diagnostics) {
	var ds diag.Diagnostics
	sources := make([]templater.Source, 0, len(handles))
	for _, handle := range handles {
		path := handle
		if p.Resolver != nil {
			resolved, err := p.Resolver.Resolve(handle)
			if err != nil {
				ds = append(ds, diag.Diagnostic{
					Severity: diag.Error,
					Message:  fmt.Sprintf("resolving source: %v", err),
					Location: &diag.Location{File: handle},
				})
				continue
			}
			path = resolved
		}
		text, err := os.ReadFile(path)
		if err != nil {
			ds = append(ds, diag.Diagnostic{
				Severity: diag.Error,
				Message:  fmt.Sprintf("reading source: %v", err),
				Location: &diag.Location{File: path},
			})
			continue
		}
		sources = append(sources, templater.Source{Path: path, Text: string(text)})
	}
	return sources, ds
}

// placePass moves a successful pass's artifact into the package tree and
// returns the written paths.
func (p *Pipeline) placePass(ctx context.Context, placer *placement.Placer, run *passRun) ([]string, error) {
	if run.result.Skipped || run.output == nil || run.output.ArtifactPath == "" || run.result.Diagnostics.HasErrors() {
		return nil, nil
	}
	artifact := placement.Artifact{
		Library:       run.output.ArtifactPath,
		Documentation: run.output.DocumentationPath,
	}

	var placed *placement.Placed
	var err error
	if run.result.Pass == Editor {
		placed, err = placer.PlaceEditor(ctx, artifact)
	} else {
		placed, err = placer.PlaceRuntime(ctx, artifact)
	}
	if err != nil {
		return nil, fmt.Errorf("placing %s artifact: %w", run.result.Pass, err)
	}

	run.result.ArtifactPath = placed.Library
	run.result.DocumentationPath = placed.Documentation
	written := []string{placed.Library}
	if placed.Documentation != "" {
		written = append(written, placed.Documentation)
	}
	return written, nil
}

func (p *Pipeline) libraryExtension() string {
	if p.LibraryExtension == "" {
		return DefaultLibraryExtension
	}
	return p.LibraryExtension
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
