//go:build !sqlite_fts5

package catalog

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over the publications table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _, _ string) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT path, title, authors
		FROM publications
		WHERE title LIKE ? OR authors LIKE ? OR identifier LIKE ?
		ORDER BY title COLLATE NOCASE
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var authors []string
		var raw string
		if err := rows.Scan(&r.Path, &r.Title, &raw); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(raw), &authors)
		r.Snippet = joinAuthors(authors)
		out = append(out, r)
	}
	return out, rows.Err()
}
