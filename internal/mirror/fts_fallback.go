//go:build !sqlite_fts5

package mirror

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE on the records table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ uint64, _, _ string) error {
	return nil
}

func ftsDelete(_ *sql.Tx, _ uint64) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT id, username, text
		FROM records
		WHERE username LIKE ? OR text LIKE ?
		ORDER BY id DESC
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("mirror: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var (
			r  SearchResult
			id int64
		)
		if err := rows.Scan(&id, &r.Username, &r.Snippet); err != nil {
			return nil, err
		}
		r.ID = uint64(id)
		out = append(out, r)
	}
	return out, rows.Err()
}
