package config

import (
	"context"

	"github.com/specialistvlad/dllforge/internal/version"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads the configuration file at path, translates it into the
	// format-agnostic model and applies defaults.
	Load(ctx context.Context, path string) (*Model, error)
}

// VersionWriter persists the version counter into the configuration file at
// path, leaving the rest of the file untouched.
type VersionWriter interface {
	WriteVersion(ctx context.Context, path string, v version.Version) error
}
