//go:build sqlite_fts5

package mirror

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
			id UNINDEXED,
			username,
			text,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id uint64, username, text string) error {
	_, _ = tx.Exec(`DELETE FROM records_fts WHERE id = ?`, int64(id))
	_, err := tx.Exec(`INSERT INTO records_fts (id, username, text) VALUES (?, ?, ?)`,
		int64(id), username, text)
	if err != nil {
		return fmt.Errorf("mirror: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id uint64) {
	_, _ = tx.Exec(`DELETE FROM records_fts WHERE id = ?`, int64(id))
}

// Search performs an FTS5 full-text search and returns matching records with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id,
		       username,
		       snippet(records_fts, 2, '<b>', '</b>', '...', 16)
		FROM records_fts
		WHERE records_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
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
