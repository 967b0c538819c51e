package pipeline

import (
	"github.com/specialistvlad/dllforge/internal/diag"
	"github.com/specialistvlad/dllforge/internal/version"
)

// PassResult is the outcome of one pass.
type PassResult struct {
	Pass Pass
	// Skipped is set when the pass had no sources. A skipped pass has no
	// artifact and no diagnostics.
	Skipped bool
	// ArtifactPath is the placed library. Empty when the pass was skipped,
	// failed, or the compiler produced nothing.
	ArtifactPath      string
	DocumentationPath string
	// References is the reference list handed to the compiler.
	References  []string
	Diagnostics diag.Diagnostics
}

// Succeeded reports whether the pass was skipped or finished without errors.
func (p PassResult) Succeeded() bool {
	return p.Skipped || !p.Diagnostics.HasErrors()
}

// Result is the outcome of one build.
type Result struct {
	// Version is the version stamped into this build's artifacts.
	Version version.Version

	RuntimeArtifactPath string
	EditorArtifactPath  string

	Runtime PassResult
	Editor  PassResult

	// Diagnostics holds build-level diagnostics followed by the runtime
	// and then the editor pass diagnostics.
	Diagnostics diag.Diagnostics
	// Succeeded is true iff no pass that had sources reported an error.
	Succeeded bool

	ArchivePath string
	PublishedAs string
}

// Compiled reports whether at least one pass ran.
func (r *Result) Compiled() bool {
	return !r.Runtime.Skipped || !r.Editor.Skipped
}
