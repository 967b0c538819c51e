package app

import (
	"fmt"

	"github.com/specialistvlad/dllforge/internal/diag"
	"github.com/specialistvlad/dllforge/internal/pipeline"
	"github.com/specialistvlad/dllforge/internal/version"
	"gopkg.in/yaml.v3"
)

// report prints a human-readable summary of a build.
func (a *App) report(res *pipeline.Result) {
	for _, d := range res.Diagnostics {
		fmt.Fprintln(a.outW, d.String())
	}
	for _, pass := range []pipeline.PassResult{res.Runtime, res.Editor} {
		switch {
		case pass.Skipped:
			fmt.Fprintf(a.outW, "%s: skipped\n", pass.Pass)
		case pass.ArtifactPath != "":
			fmt.Fprintf(a.outW, "%s: %s\n", pass.Pass, pass.ArtifactPath)
		default:
			fmt.Fprintf(a.outW, "%s: failed\n", pass.Pass)
		}
	}
	if res.ArchivePath != "" {
		fmt.Fprintf(a.outW, "archive: %s\n", res.ArchivePath)
	}
	if res.PublishedAs != "" {
		fmt.Fprintf(a.outW, "published: %s\n", res.PublishedAs)
	}

	status := "succeeded"
	if !res.Succeeded {
		status = "failed"
	}
	fmt.Fprintf(a.outW, "build %s: %s %s (%d errors, %d warnings)\n", status,
		a.model.Package.Name, res.Version,
		res.Diagnostics.Count(diag.Error), res.Diagnostics.Count(diag.Warning))
}

// requestView is the printable form of a build request.
type requestView struct {
	Config      string     `yaml:"config"`
	Package     string     `yaml:"package"`
	Namespace   string     `yaml:"namespace"`
	Placeholder string     `yaml:"placeholder"`
	Version     string     `yaml:"version"`
	Next        string     `yaml:"next_version"`
	OutputRoot  string     `yaml:"output_root"`
	Runtime     passView   `yaml:"runtime"`
	Editor      passView   `yaml:"editor"`
	Export      exportView `yaml:"export"`
}

type passView struct {
	Sources      []string `yaml:"sources"`
	Dependencies []string `yaml:"dependencies"`
}

type exportView struct {
	Files   []string `yaml:"files"`
	OnBuild bool     `yaml:"on_build"`
	Archive string   `yaml:"archive"`
}

// Show prints the resolved build request as YAML.
func (a *App) Show() error {
	req := a.Request()
	next := "saturated"
	if v, err := version.Increment(req.Version); err == nil {
		next = v.String()
	}
	view := requestView{
		Config:      a.model.Path,
		Package:     req.PackageName,
		Namespace:   req.NamespaceName,
		Placeholder: req.Placeholder,
		Version:     req.Version.String(),
		Next:        next,
		OutputRoot:  req.OutputRoot,
		Runtime:     passView{Sources: req.RuntimeSources, Dependencies: req.RuntimeDependencies},
		Editor:      passView{Sources: req.EditorSources, Dependencies: req.EditorDependencies},
		Export: exportView{
			Files:   req.ExportFiles,
			OnBuild: req.PackageOnBuild,
			Archive: a.pipeline.Packager.ArchivePath(req.PackageName),
		},
	}

	enc := yaml.NewEncoder(a.outW)
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("printing request: %w", err)
	}
	return enc.Close()
}
