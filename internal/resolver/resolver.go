// Package resolver turns source handles from the persisted configuration
// into paths on disk.
package resolver

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/dllforge/internal/fsutil"
)

// ErrNotFound is returned for a handle that no longer points at a file.
var ErrNotFound = errors.New("source handle not found")

// Resolver maps a source handle to a file path. Resolution is deterministic.
type Resolver interface {
	Resolve(handle string) (string, error)
}

// Path treats handles as file paths, relative ones being taken from Root.
type Path struct {
	Root string
}

// NewPath returns a Path resolver rooted at root.
func NewPath(root string) *Path {
	return &Path{Root: root}
}

// Resolve implements Resolver.
func (p *Path) Resolve(handle string) (string, error) {
	if handle == "" {
		return "", fmt.Errorf("empty handle: %w", ErrNotFound)
	}
	path := handle
	if !filepath.IsAbs(path) && p.Root != "" {
		path = filepath.Join(p.Root, path)
	}
	path = filepath.Clean(path)
	if !fsutil.FileExists(path) {
		return "", fmt.Errorf("%q: %w", handle, ErrNotFound)
	}
	return path, nil
}
