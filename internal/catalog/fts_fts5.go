//go:build sqlite_fts5

package catalog

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS publications_fts USING fts5(
			path UNINDEXED,
			title,
			authors,
			identifier,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, path, title, authors, identifier string) error {
	_, _ = tx.Exec(`DELETE FROM publications_fts WHERE path = ?`, path)
	_, err := tx.Exec(`INSERT INTO publications_fts (path, title, authors, identifier) VALUES (?, ?, ?, ?)`,
		path, title, authors, identifier)
	if err != nil {
		return fmt.Errorf("catalog: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM publications_fts WHERE path = ?`, path)
}

// Search performs an FTS5 full-text search over titles, authors and
// identifiers, with the matching author list as snippet.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path,
		       title,
		       snippet(publications_fts, 2, '<b>', '</b>', '...', 16)
		FROM publications_fts
		WHERE publications_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
