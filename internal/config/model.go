package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/dllforge/internal/version"
)

// Configuration defaults.
const (
	DefaultPlaceholder      = "PLACEHOLDER"
	DefaultOutputRoot       = "Assets/Plugins"
	DefaultLibraryExtension = "dll"
	DefaultExportFormat     = "zip"
	DefaultRegion           = "us-east-1"
)

// Resolver kinds.
const (
	ResolverPath = "path"
	ResolverGUID = "guid"
)

// Model is the unified, format-agnostic representation of one project's
// build configuration.
type Model struct {
	// Path is the file the model was loaded from.
	Path string
	// Dir anchors every relative path in the model. It defaults to the
	// directory of Path.
	Dir string

	Package  Package
	Compiler Compiler
	Resolver Resolver
	// Publish is nil when no publish block is configured.
	Publish *Publish
}

// Package describes what is built and where it goes.
type Package struct {
	Name      string
	Namespace string
	// Placeholder is the token replaced by Namespace. Empty disables
	// substitution.
	Placeholder string
	Version     version.Version
	OutputRoot  string
	Runtime     Pass
	Editor      Pass
	Export      Export
}

// Pass lists the inputs of one compiler invocation.
type Pass struct {
	Sources      []string
	Dependencies []string
}

// Export controls packaging.
type Export struct {
	Files   []string
	OnBuild bool
	Format  string
	// Directory receives the archive. Empty means Model.Dir.
	Directory string
}

// Compiler configures the external compiler command and the host
// assemblies every pass links against.
type Compiler struct {
	Command          string
	Args             []string
	EngineAssembly   string
	EditorAssembly   string
	LibraryExtension string
	Documentation    bool
	StampTemplate    string
	OutputFlag       string
	ReferenceFlag    string
	DocFlag          string
}

// Resolver selects how source handles are turned into paths.
type Resolver struct {
	Kind      string
	Root      string
	CacheSize int
}

// Publish is an S3-compatible upload target for archives.
type Publish struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

// ApplyDefaults fills every unset field that has a default. Placeholder is
// left alone since an empty placeholder disables substitution; loaders
// default it when the setting is absent.
func (m *Model) ApplyDefaults() {
	if m.Dir == "" && m.Path != "" {
		m.Dir = filepath.Dir(m.Path)
	}
	p := &m.Package
	if p.Namespace == "" {
		p.Namespace = p.Name
	}
	if p.OutputRoot == "" {
		p.OutputRoot = DefaultOutputRoot
	}
	if p.Export.Format == "" {
		p.Export.Format = DefaultExportFormat
	}
	if m.Compiler.LibraryExtension == "" {
		m.Compiler.LibraryExtension = DefaultLibraryExtension
	}
	if m.Resolver.Kind == "" {
		m.Resolver.Kind = ResolverPath
	}
	if m.Publish != nil && m.Publish.Region == "" {
		m.Publish.Region = DefaultRegion
	}
}

// Validate reports every invalid setting at once.
func (m *Model) Validate() error {
	var errs []error
	if strings.TrimSpace(m.Package.Name) == "" {
		errs = append(errs, errors.New("package name is required"))
	}
	if err := m.Package.Version.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch m.Resolver.Kind {
	case ResolverPath, ResolverGUID:
	default:
		errs = append(errs, fmt.Errorf("unknown resolver kind %q: must be %q or %q", m.Resolver.Kind, ResolverPath, ResolverGUID))
	}
	if m.Resolver.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("resolver cache_size must not be negative, got %d", m.Resolver.CacheSize))
	}
	if m.Publish != nil {
		if m.Publish.Endpoint == "" {
			errs = append(errs, errors.New("publish endpoint is required"))
		}
		if m.Publish.Bucket == "" {
			errs = append(errs, errors.New("publish bucket is required"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration %s: %w", m.Path, errors.Join(errs...))
	}
	return nil
}

// Abs anchors a relative path at Dir. Empty paths stay empty.
func (m *Model) Abs(path string) string {
	if path == "" || filepath.IsAbs(path) || m.Dir == "" {
		return path
	}
	return filepath.Join(m.Dir, path)
}

// AbsAll applies Abs to every path.
func (m *Model) AbsAll(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = m.Abs(p)
	}
	return out
}
