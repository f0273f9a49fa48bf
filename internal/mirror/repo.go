package mirror

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/starford/terminalart/internal/ledger"
	"github.com/starford/terminalart/internal/models"
)

// Row is a record together with the spool file it came from.
type Row struct {
	Path     string
	Checksum string
	Record   models.Record
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Snippet  string `json:"snippet"`
}

const recordColumns = `id, author, fid, username, text, timestamp, color`

// UpsertRecord inserts or replaces a record and its FTS entry within a transaction.
func (db *DB) UpsertRecord(row Row) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("mirror: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	r := row.Record
	// A file whose id changed replaces the record it used to hold.
	var previous int64
	if err := tx.QueryRow(`SELECT id FROM records WHERE path = ? AND id <> ?`, row.Path, int64(r.ID)).Scan(&previous); err == nil {
		ftsDelete(tx, uint64(previous))
		_, _ = tx.Exec(`DELETE FROM records WHERE id = ?`, previous)
	}
	_, err = tx.Exec(`
		INSERT INTO records (id, path, checksum, author, fid, username, text, timestamp, color, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			path       = excluded.path,
			checksum   = excluded.checksum,
			author     = excluded.author,
			fid        = excluded.fid,
			username   = excluded.username,
			text       = excluded.text,
			timestamp  = excluded.timestamp,
			color      = excluded.color,
			indexed_at = excluded.indexed_at
	`, int64(r.ID), row.Path, row.Checksum, r.Author, int64(r.FID), r.Username, r.Text, r.Timestamp, hex.EncodeToString(r.Color[:]))
	if err != nil {
		return fmt.Errorf("mirror: upsert record: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, r.ID, r.Username, r.Text); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteByPath removes the record stored from path and returns its id.
// A path that was never indexed is not an error; the id is then 0.
func (db *DB) DeleteByPath(path string) (uint64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("mirror: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id int64
	err = tx.QueryRow(`SELECT id FROM records WHERE path = ?`, path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("mirror: lookup %s: %w", path, err)
	}

	ftsDelete(tx, uint64(id))
	if _, err := tx.Exec(`DELETE FROM records WHERE id = ?`, id); err != nil {
		return 0, fmt.Errorf("mirror: delete %s: %w", path, err)
	}
	return uint64(id), tx.Commit()
}

// AllChecksums returns a path → checksum map of every indexed record.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM records`)
	if err != nil {
		return nil, fmt.Errorf("mirror: all checksums: %w", err)
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

// ReadMany reads ids in one query. Missing ids are reported as
// ledger.ErrAbsent; a failed query fails every id, and a query that breaks
// off midway fails the ids it had not yet returned. Ids beyond the SQLite
// integer range can never be stored and stay absent.
func (db *DB) ReadMany(ctx context.Context, ids []uint64) []ledger.Result {
	out := make([]ledger.Result, len(ids))
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		out[i] = ledger.Result{ID: id, Err: ledger.ErrAbsent}
		if id <= math.MaxInt64 {
			args = append(args, int64(id))
		}
	}
	if len(args) == 0 {
		return out
	}

	query := `SELECT ` + recordColumns + ` FROM records WHERE id IN (?` + strings.Repeat(",?", len(args)-1) + `)`
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		for i := range out {
			out[i].Err = fmt.Errorf("mirror: read: %w", err)
		}
		return out
	}
	defer rows.Close()

	found := make(map[uint64]models.Record, len(ids))
	var readErr error
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			readErr = err
			break
		}
		found[rec.ID] = rec
	}
	if readErr == nil {
		readErr = rows.Err()
	}
	for i, id := range ids {
		switch rec, ok := found[id]; {
		case ok:
			out[i] = ledger.Result{ID: id, Record: rec}
		case readErr != nil:
			out[i].Err = fmt.Errorf("mirror: read %d: %w", id, readErr)
		}
	}
	return out
}

// Count returns the highest indexed id, which on a gap-free ledger is the
// number of records minted.
func (db *DB) Count(ctx context.Context) (uint64, error) {
	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("mirror: count: %w", err)
	}
	return uint64(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (models.Record, error) {
	var (
		rec      models.Record
		id, fid  int64
		colorHex string
	)
	if err := s.Scan(&id, &rec.Author, &fid, &rec.Username, &rec.Text, &rec.Timestamp, &colorHex); err != nil {
		return rec, err
	}
	rec.ID, rec.FID = uint64(id), uint64(fid)
	if b, err := hex.DecodeString(colorHex); err == nil && len(b) == 3 {
		copy(rec.Color[:], b)
	}
	return rec, nil
}
