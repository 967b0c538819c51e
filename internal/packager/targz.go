package packager

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// TarGz writes gzip-compressed tar archives.
type TarGz struct{}

// Extension implements Archiver.
func (TarGz) Extension() string { return "tgz" }

// Write implements Archiver.
func (TarGz) Write(ctx context.Context, dst string, entries []Entry) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	closeAll := func() error {
		if err := tw.Close(); err != nil {
			gz.Close()
			f.Close()
			return err
		}
		if err := gz.Close(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			closeAll()
			return err
		}
		if err := addTarEntry(tw, e); err != nil {
			closeAll()
			return err
		}
	}
	return closeAll()
}

func addTarEntry(tw *tar.Writer, e Entry) error {
	src, err := os.Open(e.Path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = e.Name

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("adding %q: %w", e.Name, err)
	}
	if _, err := io.Copy(tw, src); err != nil {
		return fmt.Errorf("adding %q: %w", e.Name, err)
	}
	return nil
}
