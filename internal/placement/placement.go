// Package placement moves compiled artifacts from a scratch location into
// the package's output tree:
//
//	<root>/<package>/          runtime artifacts
//	<root>/<package>/Editor/   editor artifacts
//
// Directories are created on demand. An existing file at a destination is
// deleted and then replaced; the delete and the move are separate steps,
// so a crash in between leaves no artifact behind. Concurrent placement
// into the same package is not safe and must be serialized by the caller.
package placement

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/dllforge/internal/ctxlog"
	"github.com/specialistvlad/dllforge/internal/fsutil"
)

// EditorDirName is the subdirectory holding editor artifacts.
const EditorDirName = "Editor"

// Artifact is a set of freshly compiled files in a scratch location.
type Artifact struct {
	Library string
	// Documentation is optional.
	Documentation string
}

// Placed reports where an artifact ended up.
type Placed struct {
	Library       string
	Documentation string
	// Replaced lists destinations that already held a file.
	Replaced []string
}

// Placer relocates artifacts for one package.
type Placer struct {
	Root    string
	Package string
}

// New returns a Placer for package under root.
func New(root, pkg string) *Placer {
	return &Placer{Root: root, Package: pkg}
}

// RuntimeDir is the destination directory for runtime artifacts.
func (p *Placer) RuntimeDir() string {
	return filepath.Join(p.Root, p.Package)
}

// EditorDir is the destination directory for editor artifacts.
func (p *Placer) EditorDir() string {
	return filepath.Join(p.RuntimeDir(), EditorDirName)
}

// PlaceRuntime moves a runtime artifact into RuntimeDir.
func (p *Placer) PlaceRuntime(ctx context.Context, a Artifact) (*Placed, error) {
	return p.place(ctx, p.RuntimeDir(), a)
}

// PlaceEditor moves an editor artifact into EditorDir.
func (p *Placer) PlaceEditor(ctx context.Context, a Artifact) (*Placed, error) {
	return p.place(ctx, p.EditorDir(), a)
}

func (p *Placer) place(ctx context.Context, dir string, a Artifact) (*Placed, error) {
	logger := ctxlog.FromContext(ctx)
	if a.Library == "" {
		return nil, fmt.Errorf("placing into %q: artifact has no library", dir)
	}
	if err := fsutil.EnsureDir(dir); err != nil {
		return nil, err
	}

	placed := &Placed{}
	var err error
	if placed.Library, err = p.move(ctx, a.Library, dir, placed); err != nil {
		return nil, err
	}
	if a.Documentation != "" {
		if placed.Documentation, err = p.move(ctx, a.Documentation, dir, placed); err != nil {
			return nil, err
		}
	}

	logger.Info("Artifact placed.", "path", placed.Library, "replaced", len(placed.Replaced))
	return placed, nil
}

func (p *Placer) move(ctx context.Context, src, dir string, placed *Placed) (string, error) {
	dst := filepath.Join(dir, filepath.Base(src))
	replaced, err := fsutil.ReplaceFile(src, dst)
	if err != nil {
		return "", fmt.Errorf("placing %q: %w", filepath.Base(src), err)
	}
	if replaced {
		ctxlog.FromContext(ctx).Debug("Replaced existing file at destination.", "path", dst)
		placed.Replaced = append(placed.Replaced, dst)
	}
	return dst, nil
}
