package packager

import (
	"fmt"
	"strings"
)

// DefaultFormat is used when no archive format is configured.
const DefaultFormat = "zip"

// ForFormat returns the Archiver for a format name: "zip", or "tgz"
// (also spelled "tar.gz").
func ForFormat(name string) (Archiver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "zip":
		return Zip{}, nil
	case "tgz", "tar.gz":
		return TarGz{}, nil
	default:
		return nil, fmt.Errorf("unknown archive format %q: must be 'zip' or 'tgz'", name)
	}
}
