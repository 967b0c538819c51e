package hcl_adapter

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/dllforge/internal/config"
	"github.com/specialistvlad/dllforge/internal/ctxlog"
)

// DotEnvFile is read from the configuration's directory before decoding.
const DotEnvFile = ".env"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses and decodes one configuration file. Expressions may read
// environment variables through `env.<NAME>`; variables from a .env file
// next to the configuration are visible there too, the process environment
// taking precedence.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	env, fromFile, err := readEnvironment(filepath.Join(dir, DotEnvFile))
	if err != nil {
		return nil, err
	}
	if len(fromFile) > 0 {
		logger.Debug("Loaded .env file.", "path", filepath.Join(dir, DotEnvFile), "variables", fromFile)
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(abs)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, newEvalContext(env), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	model, err := l.translate(ctx, &root)
	if err != nil {
		return nil, fmt.Errorf("in %s: %w", path, err)
	}
	model.Path = abs
	model.Dir = dir
	model.ApplyDefaults()
	if err := model.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.",
		"package", model.Package.Name,
		"version", model.Package.Version.String(),
		"runtime_sources", len(model.Package.Runtime.Sources),
		"editor_sources", len(model.Package.Editor.Sources),
		"publish", model.Publish != nil,
	)
	return model, nil
}
