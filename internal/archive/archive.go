// Package archive opens packaged publications: zip containers and exploded
// directories.
package archive

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
)

// Archive is an open package. Entry paths are slash-separated and relative
// to the package root.
type Archive interface {
	// Name returns the path the archive was opened from.
	Name() string
	// Entries lists every file entry in the package.
	Entries() []string
	// HasEntry reports whether the package contains a file at p.
	HasEntry(p string) bool
	// ReadEntry returns the content of the file at p.
	ReadEntry(p string) ([]byte, error)
	// Close releases the package. Calling it more than once is harmless.
	Close() error
}

// Open opens the package at p, as a directory or as a zip file.
func Open(p string) (Archive, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("archive: stat %s: %w", p, err)
	}
	if info.IsDir() {
		return OpenDir(p)
	}
	return OpenZip(p)
}

// CleanEntry turns a manifest href into an entry path: the fragment is
// dropped, percent escapes are decoded and leading slashes removed.
func CleanEntry(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if dec, err := url.PathUnescape(href); err == nil {
		href = dec
	}
	href = strings.TrimLeft(href, "/")
	if href == "" {
		return ""
	}
	return path.Clean(href)
}
