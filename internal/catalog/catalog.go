package catalog

import "github.com/starford/folio/internal/models"

// Catalog defines the catalog operations. Consumers should depend on this
// interface rather than the concrete *DB type.
type Catalog interface {
	Upsert(e models.Entry) error
	Delete(path string) error
	Get(path string) (*models.Entry, error)
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	List(limit, offset int) ([]models.Entry, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}
