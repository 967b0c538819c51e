// Package packager bundles an explicit list of files into one distributable
// archive named "<package>.<extension>".
package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/dllforge/internal/ctxlog"
	"github.com/specialistvlad/dllforge/internal/diag"
	"github.com/specialistvlad/dllforge/internal/fsutil"
)

var (
	// ErrMissingFile is returned when an export file does not exist. It
	// matches diag.ErrPackagingMissingFile with errors.Is.
	ErrMissingFile = fmt.Errorf("export file not found: %w", diag.ErrPackagingMissingFile)
	// ErrNoFiles is returned for an empty export list.
	ErrNoFiles = errors.New("no files to package")
	// ErrDuplicateEntry is returned when two different export files map to
	// the same name inside the archive.
	ErrDuplicateEntry = errors.New("duplicate archive entry")
)

// Entry is one file in an archive.
type Entry struct {
	// Name is the slash-separated path inside the archive.
	Name string
	// Path is where the file is read from.
	Path string
}

// Archiver writes entries into an archive of a specific format.
type Archiver interface {
	// Extension is the default file extension, without the dot.
	Extension() string
	Write(ctx context.Context, dst string, entries []Entry) error
}

// Packager produces archives for a package.
type Packager struct {
	Archiver Archiver
	// Dir receives the archive.
	Dir string
	// BaseDir anchors relative export paths. Empty means the current directory.
	BaseDir string
	// Extension overrides Archiver.Extension when set.
	Extension string
}

// New returns a Packager writing archives into dir.
func New(archiver Archiver, dir, baseDir string) *Packager {
	return &Packager{Archiver: archiver, Dir: dir, BaseDir: baseDir}
}

// ArchivePath is where Package writes the archive for packageName.
func (p *Packager) ArchivePath(packageName string) string {
	ext := p.Extension
	if ext == "" {
		ext = p.Archiver.Extension()
	}
	return filepath.Join(p.Dir, packageName+"."+strings.TrimPrefix(ext, "."))
}

// Package writes exactly the given files into one archive and returns its
// path. Nothing is written if any file is missing or two files collide on
// an entry name; every such problem is reported.
func (p *Packager) Package(ctx context.Context, packageName string, files []string) (string, error) {
	logger := ctxlog.FromContext(ctx)
	if len(files) == 0 {
		return "", ErrNoFiles
	}
	if packageName == "" {
		return "", fmt.Errorf("package name is required")
	}

	entries, err := p.entries(files)
	if err != nil {
		return "", err
	}

	if err := fsutil.EnsureDir(p.Dir); err != nil {
		return "", err
	}
	dst := p.ArchivePath(packageName)
	tmp := dst + ".tmp"
	logger.Debug("Writing archive.", "path", dst, "entries", len(entries))
	if err := p.Archiver.Write(ctx, tmp, entries); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("writing archive %q: %w", dst, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("finalizing archive %q: %w", dst, err)
	}

	logger.Info("Package archive written.", "path", dst, "entries", len(entries))
	return dst, nil
}

// entries resolves files into archive entries. A file listed twice is
// archived once; different files sharing an entry name are an error.
func (p *Packager) entries(files []string) ([]Entry, error) {
	var errs []error
	entries := make([]Entry, 0, len(files))
	seen := make(map[string]string, len(files))
	for _, f := range files {
		path := f
		if !filepath.IsAbs(path) && p.BaseDir != "" {
			path = filepath.Join(p.BaseDir, path)
		}
		if !fsutil.FileExists(path) {
			errs = append(errs, fmt.Errorf("%q: %w", f, ErrMissingFile))
			continue
		}
		name := p.entryName(f, path)
		if prev, dup := seen[name]; dup {
			if !sameFile(prev, path) {
				errs = append(errs, fmt.Errorf("%q and %q both map to %q: %w", prev, path, name, ErrDuplicateEntry))
			}
			continue
		}
		seen[name] = path
		entries = append(entries, Entry{Name: name, Path: path})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return entries, nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// entryName keeps the path as given. Absolute paths and paths escaping
// BaseDir are made relative to BaseDir when possible, otherwise reduced to
// their base name, so entries never point outside the archive root.
func (p *Packager) entryName(given, resolved string) string {
	name := filepath.Clean(given)
	if filepath.IsAbs(name) || escapes(name) {
		name = filepath.Base(resolved)
		if p.BaseDir != "" {
			if base, err := filepath.Abs(p.BaseDir); err == nil {
				if abs, err := filepath.Abs(resolved); err == nil {
					if rel, err := filepath.Rel(base, abs); err == nil && !escapes(rel) {
						name = rel
					}
				}
			}
		}
	}
	return filepath.ToSlash(name)
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
