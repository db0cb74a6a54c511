// Package library manages the directory of publication packages.
package library

import (
	"io"

	"github.com/starford/folio/internal/archive"
	"github.com/starford/folio/internal/models"
)

// Provider is the interface for library file operations. Paths are
// relative to the library root.
type Provider interface {
	// Root returns the absolute library directory.
	Root() string
	// List returns every package file in the library.
	List() ([]models.Package, error)
	// Stat returns the package information for a single path.
	Stat(path string) (models.Package, error)
	// Open opens the package at path.
	Open(path string) (archive.Archive, error)
	// Import atomically copies r into the library under name.
	Import(name string, r io.Reader) (string, error)
	// Remove deletes the package at path.
	Remove(path string) error
}
