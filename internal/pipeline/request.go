package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/dllforge/internal/version"
)

// Pass identifies one compiler invocation.
type Pass int

const (
	Runtime Pass = iota
	Editor
)

func (p Pass) String() string {
	switch p {
	case Runtime:
		return "runtime"
	case Editor:
		return "editor"
	default:
		return fmt.Sprintf("pass(%d)", int(p))
	}
}

// Request is the configuration of one build.
type Request struct {
	PackageName   string
	NamespaceName string
	// Placeholder is replaced by NamespaceName in every source. Empty
	// disables substitution.
	Placeholder string
	// Version is the last built version; the build stamps its successor.
	Version    version.Version
	OutputRoot string

	// Sources are handles understood by the pipeline's resolver.
	RuntimeSources []string
	EditorSources  []string

	// Dependencies are paths to assemblies, passed to the compiler as is.
	RuntimeDependencies []string
	EditorDependencies  []string

	ExportFiles    []string
	PackageOnBuild bool
}

// Validate reports every invalid field at once.
func (r Request) Validate() error {
	var errs []error
	if err := validatePackageName(r.PackageName); err != nil {
		errs = append(errs, err)
	}
	if err := r.Version.Validate(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(r.OutputRoot) == "" {
		errs = append(errs, errors.New("output root is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid build request: %w", errors.Join(errs...))
	}
	return nil
}

func validatePackageName(name string) error {
	switch {
	case name == "":
		return errors.New("package name is required")
	case name == "." || name == "..":
		return fmt.Errorf("package name %q is not a valid file name", name)
	case strings.TrimSpace(name) != name:
		return fmt.Errorf("package name %q has leading or trailing whitespace", name)
	}
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(`/\:*?"<>|`, r) {
			return fmt.Errorf("package name %q contains %q, which is not allowed in file names", name, r)
		}
	}
	return nil
}

func (r Request) sources(p Pass) []string {
	if p == Editor {
		return r.EditorSources
	}
	return r.RuntimeSources
}

// ArtifactName is the file name of a pass's library: "<pkg>.<ext>" for the
// runtime pass and "<pkg>.Editor.<ext>" for the editor pass.
func ArtifactName(pkg string, p Pass, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if p == Editor {
		return pkg + ".Editor." + ext
	}
	return pkg + "." + ext
}
