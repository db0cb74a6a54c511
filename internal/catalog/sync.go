package catalog

import (
	"log/slog"
	"time"

	"github.com/starford/folio/internal/library"
	"github.com/starford/folio/internal/manifest"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/publication"
)

// Sync walks the library and brings the catalog up to date:
//   - new/changed packages are opened and upserted
//   - packages removed from disk are deleted from the catalog
func Sync(db *DB, lib library.Provider, logger *slog.Logger) error {
	return reconcile(db, lib, logger, nil)
}

func reconcile(db *DB, lib library.Provider, logger *slog.Logger, cb EventCallback) error {
	pkgs, err := lib.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(pkgs))
	for _, pkg := range pkgs {
		disk[pkg.Path] = struct{}{}

		old, known := checksums[pkg.Path]
		if old == pkg.Checksum {
			continue
		}
		if err := indexPackage(db, lib, pkg, logger); err != nil {
			logger.Warn("sync: index failed", slog.String("path", pkg.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", pkg.Path))
		if cb != nil {
			kind := EventCreated
			if known {
				kind = EventUpdated
			}
			cb(kind, pkg.Path)
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.Delete(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("path", p))
		if cb != nil {
			cb(EventDeleted, p)
		}
	}

	return nil
}

// indexPackage opens a package, reads its manifest and upserts the summary.
// The package is released before returning.
func indexPackage(db *DB, lib library.Provider, pkg models.Package, logger *slog.Logger) error {
	arc, err := lib.Open(pkg.Path)
	if err != nil {
		return err
	}
	pub, err := manifest.Load(arc, logger)
	if err != nil {
		_ = arc.Close()
		return err
	}
	defer pub.Teardown()

	return db.Upsert(EntryFor(pkg.Path, pkg.Checksum, pkg.UpdatedAt, pub))
}

// EntryFor summarises a decoded publication for the catalog.
func EntryFor(path, checksum string, updatedAt time.Time, pub *publication.Publication) models.Entry {
	e := models.Entry{
		Path:         path,
		ReadingOrder: len(pub.Spine),
		HasLicense:   pub.LCP != nil,
		Checksum:     checksum,
		UpdatedAt:    updatedAt,
	}
	if m := pub.Metadata; m != nil {
		e.Identifier = m.Identifier
		e.Title = m.Title.String()
		e.Authors = m.Author.Names()
		e.Language = []string(m.Language)
	}
	if l, ok := pub.Cover(); ok {
		e.CoverHref = l.Href
	}
	if l, ok := pub.NavigationDocument(); ok {
		e.NavHref = l.Href
	}
	return e
}

// IndexPath indexes a single package by its library path.
func IndexPath(db *DB, lib library.Provider, path string, logger *slog.Logger) error {
	pkg, err := lib.Stat(path)
	if err != nil {
		return err
	}
	return indexPackage(db, lib, pkg, logger)
}
