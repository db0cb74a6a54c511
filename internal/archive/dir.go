package archive

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/folio/internal/apperr"
)

// Dir is an exploded package on the local file system.
type Dir struct {
	root   string // absolute
	closed bool
}

// OpenDir opens the directory at root as a package.
func OpenDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("archive: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("archive: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("archive: root is not a directory: %s", abs)
	}
	return &Dir{root: abs}, nil
}

// safePath resolves an entry against the root and rejects any result that
// escapes it.
func (d *Dir) safePath(entry string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(entry))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("archive: absolute paths not allowed: %s", entry)
	}
	abs := filepath.Join(d.root, cleaned)
	if !strings.HasPrefix(abs, d.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive: path escapes package root: %s", entry)
	}
	return abs, nil
}

func (d *Dir) Name() string { return d.root }

func (d *Dir) Entries() []string {
	if d.closed {
		return nil
	}
	var out []string
	_ = filepath.WalkDir(d.root, func(p string, e fs.DirEntry, err error) error {
		if err != nil || e.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(d.root, p)
		if relErr != nil {
			return nil
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(out)
	return out
}

func (d *Dir) HasEntry(p string) bool {
	if d.closed {
		return false
	}
	abs, err := d.safePath(p)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}

func (d *Dir) ReadEntry(p string) ([]byte, error) {
	if d.closed {
		return nil, apperr.ErrReleased
	}
	abs, err := d.safePath(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("archive: %s: %w", p, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("archive: read %s: %w", p, err)
	}
	return data, nil
}

// Close marks the directory released; there is no handle to free.
func (d *Dir) Close() error {
	d.closed = true
	return nil
}
