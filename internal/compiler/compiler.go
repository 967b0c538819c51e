// Package compiler defines the contract between the build pipeline and the
// language compiler, and provides an adapter that drives a command-line
// compiler such as mcs or csc.
package compiler

import (
	"context"

	"github.com/specialistvlad/dllforge/internal/diag"
	"github.com/specialistvlad/dllforge/internal/templater"
)

// Options tune a single compiler invocation.
type Options struct {
	TreatWarningsAsErrors bool
	// DocumentationPath, when set, asks the compiler to emit an XML
	// documentation side-file at this path.
	DocumentationPath string
}

// Invocation is everything the compiler needs for one pass. Sources hold
// text that has already been templated; the compiler never reads the
// originals from disk.
type Invocation struct {
	OutputPath string
	References []string
	Sources    []templater.Source
	Options    Options
}

// Output is what a compiler invocation produced. ArtifactPath is empty when
// no artifact was written. Diagnostics may be non-empty either way.
type Output struct {
	ArtifactPath      string
	DocumentationPath string
	Diagnostics       diag.Diagnostics
}

// Compiler compiles one pass. A returned error means the compiler could not
// be run at all; compile failures are reported through Output.Diagnostics.
type Compiler interface {
	Compile(ctx context.Context, inv Invocation) (*Output, error)
}

// Func adapts a function to the Compiler interface.
type Func func(ctx context.Context, inv Invocation) (*Output, error)

// Compile calls f.
func (f Func) Compile(ctx context.Context, inv Invocation) (*Output, error) {
	return f(ctx, inv)
}
