package packager

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zip"
)

// Zip writes deflate-compressed zip archives.
type Zip struct{}

// Extension implements Archiver.
func (Zip) Extension() string { return "zip" }

// Write implements Archiver.
func (Zip) Write(ctx context.Context, dst string, entries []Entry) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	w := zip.NewWriter(f)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			w.Close()
			f.Close()
			return err
		}
		if err := addZipEntry(w, e); err != nil {
			w.Close()
			f.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func addZipEntry(w *zip.Writer, e Entry) error {
	src, err := os.Open(e.Path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = e.Name
	header.Method = zip.Deflate

	dst, err := w.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("adding %q: %w", e.Name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("adding %q: %w", e.Name, err)
	}
	return nil
}
