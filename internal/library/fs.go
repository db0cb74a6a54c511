package library

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/archive"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/models"
)

// Extensions recognised as publication packages.
var Extensions = []string{".webpub", ".audiobook", ".lcpa", ".lcpau", ".lcpdf", ".divina", ".zip"}

// IsPackage reports whether name has a package extension.
func IsPackage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to library directory
}

var _ Provider = (*FS)(nil)

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("library: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("library: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

func (f *FS) Root() string { return f.root }

// safePath resolves a relative path against the library root and rejects
// any result that escapes it.
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("library: absolute paths not allowed: %s", rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("library: path escapes library root: %s", rel)
	}
	return abs, nil
}

// Rel returns abs relative to the library root.
func (f *FS) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(f.root, abs)
	if err != nil {
		return "", fmt.Errorf("library: rel %s: %w", abs, err)
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("library: %s is outside the library", abs)
	}
	return filepath.ToSlash(rel), nil
}

// List walks the library and returns metadata for every package file.
// Hidden files, including in-flight imports, are skipped.
func (f *FS) List() ([]models.Package, error) {
	var out []models.Package
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") || !IsPackage(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		sum, err := checksum.File(p)
		if err != nil {
			return err
		}
		rel, _ := f.Rel(p)
		out = append(out, models.Package{
			Path:      rel,
			Size:      info.Size(),
			Checksum:  sum,
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("library: list: %w", err)
	}
	return out, nil
}

// Stat returns the package information for a single path.
func (f *FS) Stat(path string) (models.Package, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return models.Package{}, err
	}
	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		return models.Package{}, fmt.Errorf("library: %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Package{}, fmt.Errorf("library: stat %s: %w", path, err)
	}
	if info.IsDir() || !IsPackage(info.Name()) {
		return models.Package{}, fmt.Errorf("library: %s is not a package file", path)
	}
	sum, err := checksum.File(abs)
	if err != nil {
		return models.Package{}, err
	}
	rel, err := f.Rel(abs)
	if err != nil {
		return models.Package{}, err
	}
	return models.Package{Path: rel, Size: info.Size(), Checksum: sum, UpdatedAt: info.ModTime()}, nil
}

// Open opens the package at path.
func (f *FS) Open(path string) (archive.Archive, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("library: %s: %w", path, apperr.ErrNotFound)
	}
	return archive.Open(abs)
}

// Import writes r into the library atomically: tmp file → fsync → rename.
// An existing package with the same name is never overwritten.
func (f *FS) Import(name string, r io.Reader) (string, error) {
	if !IsPackage(name) {
		return "", fmt.Errorf("library: %s is not a package file", name)
	}
	abs, err := f.safePath(name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err == nil {
		return "", fmt.Errorf("library: %s: %w", name, apperr.ErrAlreadyExists)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("library: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".folio-tmp-*")
	if err != nil {
		return "", fmt.Errorf("library: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return "", fmt.Errorf("library: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("library: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("library: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return "", fmt.Errorf("library: rename: %w", err)
	}
	success = true
	return f.Rel(abs)
}

// Remove deletes a package from the library.
func (f *FS) Remove(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if abs == f.root {
		return fmt.Errorf("library: refusing to remove the library root")
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("library: %s: %w", path, apperr.ErrNotFound)
		}
		return fmt.Errorf("library: remove %s: %w", path, err)
	}
	return nil
}
