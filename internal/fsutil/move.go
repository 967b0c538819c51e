package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// EnsureDir creates dir and any missing parents. An existing directory is not an error.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %q: %w", dir, err)
	}
	return nil
}

// ReplaceFile moves src to dst. If dst already exists it is deleted first and
// then src is moved in. The two steps are not atomic: a crash between them
// leaves nothing at dst.
//
// It reports whether an existing file was replaced.
func ReplaceFile(src, dst string) (bool, error) {
	replaced := false
	if _, err := os.Lstat(dst); err == nil {
		if err := os.Remove(dst); err != nil {
			return false, fmt.Errorf("removing existing %q: %w", dst, err)
		}
		replaced = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat %q: %w", dst, err)
	}

	if err := os.Rename(src, dst); err != nil {
		if !isCrossDevice(err) {
			return replaced, fmt.Errorf("moving %q to %q: %w", src, dst, err)
		}
		if err := copyThenRemove(src, dst); err != nil {
			return replaced, err
		}
	}
	return replaced, nil
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return errors.Is(linkErr.Err, syscall.EXDEV)
	}
	return false
}

// copyThenRemove is the fallback for moves across file systems.
func copyThenRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %q: %w", src, err)
	}
	defer in.Close()

	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %q: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %q to %q: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", dst, err)
	}
	in.Close()
	return os.Remove(src)
}
