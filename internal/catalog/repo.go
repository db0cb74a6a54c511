package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const entryColumns = `path, identifier, title, authors, language, cover_href, nav_href,
	reading_order, has_license, checksum, updated_at`

// Upsert inserts or replaces a publication and its FTS entry within a transaction.
func (db *DB) Upsert(e models.Entry) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	authorsJSON, _ := json.Marshal(nonNil(e.Authors))
	languageJSON, _ := json.Marshal(nonNil(e.Language))

	_, err = tx.Exec(`
		INSERT INTO publications (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			identifier    = excluded.identifier,
			title         = excluded.title,
			authors       = excluded.authors,
			language      = excluded.language,
			cover_href    = excluded.cover_href,
			nav_href      = excluded.nav_href,
			reading_order = excluded.reading_order,
			has_license   = excluded.has_license,
			checksum      = excluded.checksum,
			updated_at    = excluded.updated_at
	`, e.Path, e.Identifier, e.Title, string(authorsJSON), string(languageJSON),
		e.CoverHref, e.NavHref, e.ReadingOrder, e.HasLicense, e.Checksum, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert publication: %w", err)
	}

	if err := ftsUpsert(tx, e.Path, e.Title, strings.Join(e.Authors, " "), e.Identifier); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a publication and its FTS entry.
func (db *DB) Delete(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM publications WHERE path = ?`, path); err != nil {
		return fmt.Errorf("catalog: delete publication: %w", err)
	}

	return tx.Commit()
}

// Get returns the catalog entry for path.
func (db *DB) Get(path string) (*models.Entry, error) {
	row := db.conn.QueryRow(`SELECT `+entryColumns+` FROM publications WHERE path = ?`, path)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalog: %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get %s: %w", path, err)
	}
	return e, nil
}

// GetChecksum returns the stored checksum for a publication, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM publications WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("catalog: checksum %s: %w", path, err)
	}
	return cs, nil
}

// AllChecksums maps every catalogued path to its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM publications`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// List returns a page of entries ordered by title, and the total count.
func (db *DB) List(limit, offset int) ([]models.Entry, int, error) {
	if limit <= 0 {
		limit = 50
	}
	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM publications`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("catalog: count: %w", err)
	}
	rows, err := db.conn.Query(`SELECT `+entryColumns+` FROM publications
		ORDER BY title COLLATE NOCASE, path LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	var out []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.Entry, error) {
	var e models.Entry
	var authors, language string
	if err := s.Scan(&e.Path, &e.Identifier, &e.Title, &authors, &language,
		&e.CoverHref, &e.NavHref, &e.ReadingOrder, &e.HasLicense, &e.Checksum, &e.UpdatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(authors), &e.Authors)
	_ = json.Unmarshal([]byte(language), &e.Language)
	return &e, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func joinAuthors(authors []string) string {
	return strings.Join(authors, ", ")
}
