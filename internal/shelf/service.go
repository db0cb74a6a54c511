// Package shelf coordinates the library, the catalog and manifest loading
// behind the operations the command line exposes.
package shelf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/archive"
	"github.com/starford/folio/internal/catalog"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/library"
	"github.com/starford/folio/internal/manifest"
	"github.com/starford/folio/internal/mediaoverlay"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/publication"
)

// Inspection is a summary of a package's manifest.
type Inspection struct {
	Entry       models.Entry   `json:"entry"`
	Context     []string       `json:"context,omitempty"`
	Collections map[string]int `json:"collections"`
	License     *LicenseInfo   `json:"license,omitempty"`
	Narrations  []Narration    `json:"narrations,omitempty"`
	Entries     int            `json:"entries"`
	// ManifestSum is the sha-256 of manifest.json as stored in the package.
	ManifestSum string `json:"manifest_sha256,omitempty"`
}

// LicenseInfo is the part of an LCP license worth showing.
type LicenseInfo struct {
	ID          string `json:"id"`
	Provider    string `json:"provider"`
	Profile     string `json:"profile"`
	Active      bool   `json:"active"`
	Publication string `json:"publication,omitempty"`
}

// Narration is the annotated media overlay of one reading-order item.
type Narration struct {
	Href     string             `json:"href"`
	Overlay  string             `json:"overlay"`
	Duration float64            `json:"duration"`
	Root     *mediaoverlay.Node `json:"-"`
}

// Service coordinates library and catalog operations.
type Service struct {
	lib    library.Provider
	db     *catalog.DB
	clock  mediaoverlay.ClockParser
	logger *slog.Logger
}

// NewService creates a new shelf service.
func NewService(lib library.Provider, db *catalog.DB, logger *slog.Logger) *Service {
	return &Service{
		lib:    lib,
		db:     db,
		clock:  mediaoverlay.ClockParser{Logger: logger},
		logger: logger,
	}
}

// Open loads the publication at path. The caller owns the result and must
// call Teardown on it.
func (s *Service) Open(_ context.Context, path string) (*publication.Publication, error) {
	arc, err := s.lib.Open(path)
	if err != nil {
		return nil, err
	}
	pub, err := manifest.Load(arc, s.logger)
	if err != nil {
		_ = arc.Close()
		return nil, err
	}
	return pub, nil
}

// OpenFile loads a package that is not part of the library.
func (s *Service) OpenFile(_ context.Context, path string) (*publication.Publication, error) {
	arc, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	pub, err := manifest.Load(arc, s.logger)
	if err != nil {
		_ = arc.Close()
		return nil, err
	}
	return pub, nil
}

// Inspect summarises an open publication.
func (s *Service) Inspect(ctx context.Context, pub *publication.Publication, path string) (*Inspection, error) {
	out := &Inspection{
		Entry:       catalog.EntryFor(path, "", time.Time{}, pub),
		Context:     pub.Context,
		Collections: make(map[string]int),
	}
	for _, key := range publication.CollectionKeys() {
		if coll, _ := pub.Collection(key); len(coll) > 0 {
			out.Collections[key] = len(coll)
		}
	}
	if lic := pub.LCP; lic != nil {
		out.License = &LicenseInfo{
			ID:       lic.ID,
			Provider: lic.Provider,
			Profile:  lic.Encryption.Profile,
			Active:   lic.Active(time.Now()),
		}
		if l, ok := lic.PublicationLink(); ok {
			out.License.Publication = l.Href
		}
	}
	if arc, ok := manifest.Archive(pub); ok {
		out.Entries = len(arc.Entries())
		if data, err := arc.ReadEntry(manifest.Entry); err == nil {
			out.ManifestSum = checksum.Sum(data)
		}
	}
	narrations, err := s.Overlays(ctx, pub)
	if err != nil {
		return nil, err
	}
	out.Narrations = narrations
	return out, nil
}

// Overlays loads and annotates the media overlay of every reading-order
// item that declares one. An unreadable overlay is logged and skipped.
func (s *Service) Overlays(ctx context.Context, pub *publication.Publication) ([]Narration, error) {
	var out []Narration
	for _, l := range pub.Spine {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		href := l.MediaOverlay()
		if href == "" {
			continue
		}
		root, err := manifest.LoadOverlay(pub, href, s.clock)
		if err != nil {
			s.logger.Warn("shelf: overlay skipped",
				slog.String("href", l.Href),
				slog.String("overlay", href),
				slog.String("error", err.Error()))
			continue
		}
		n := Narration{Href: l.Href, Overlay: href, Root: root}
		if root.Duration != nil {
			n.Duration = *root.Duration
		}
		out = append(out, n)
	}
	return out, nil
}

// Cover returns the cover image of the publication at path and its media type.
func (s *Service) Cover(ctx context.Context, path string) ([]byte, string, error) {
	pub, err := s.Open(ctx, path)
	if err != nil {
		return nil, "", err
	}
	defer pub.Teardown()

	l, ok := pub.Cover()
	if !ok {
		return nil, "", fmt.Errorf("shelf: %s has no cover: %w", path, apperr.ErrNotFound)
	}
	arc, _ := manifest.Archive(pub)
	data, err := arc.ReadEntry(archive.CleanEntry(l.Href))
	if err != nil {
		return nil, "", err
	}
	return data, l.TypeLink, nil
}

// Get returns the catalog entry for path.
func (s *Service) Get(_ context.Context, path string) (*models.Entry, error) {
	return s.db.Get(path)
}

// List returns a page of catalog entries.
func (s *Service) List(_ context.Context, limit, offset int) ([]models.Entry, int, error) {
	return s.db.List(limit, offset)
}

// Search runs a catalog search.
func (s *Service) Search(_ context.Context, query string, limit int) ([]catalog.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Import copies a package into the library and catalogs it. A package that
// cannot be read is removed again.
func (s *Service) Import(_ context.Context, name string, r io.Reader) (*models.Entry, error) {
	rel, err := s.lib.Import(name, r)
	if err != nil {
		return nil, err
	}
	if err := catalog.IndexPath(s.db, s.lib, rel, s.logger); err != nil {
		if rmErr := s.lib.Remove(rel); rmErr != nil {
			s.logger.Warn("shelf: cleanup failed", slog.String("path", rel), slog.String("error", rmErr.Error()))
		}
		return nil, fmt.Errorf("shelf: import %s: %w", name, err)
	}
	return s.db.Get(rel)
}

// Remove deletes a package from the library and the catalog.
func (s *Service) Remove(_ context.Context, path string) error {
	if err := s.lib.Remove(path); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return s.db.Delete(path)
}
