// Package testutil provides shared test helpers for setting up spools and
// mirror databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/terminalart/internal/mirror"
	"github.com/starford/terminalart/internal/models"
	"github.com/starford/terminalart/internal/recordfile"
	"github.com/starford/terminalart/internal/storage"
)

// TestDB creates a temporary mirror database that is automatically cleaned up.
func TestDB(t *testing.T) *mirror.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "terminalart-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := mirror.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSpool creates a temporary spool directory with a storage.Provider.
func TestSpool(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Record returns a valid record with a fixed timestamp and color.
func Record(id uint64, username, text string) models.Record {
	return models.Record{
		ID:        id,
		FID:       id * 10,
		Username:  username,
		Text:      text,
		Timestamp: 1737909240,
		Color:     [3]byte{0x00, 0xff, 0xff},
	}
}

// Seed writes recs straight into the mirror.
func Seed(t *testing.T, db *mirror.DB, recs ...models.Record) {
	t.Helper()
	for _, r := range recs {
		if err := db.UpsertRecord(mirror.Row{Path: recordfile.Name(r.ID), Checksum: "seed", Record: r}); err != nil {
			t.Fatalf("seed record %d: %v", r.ID, err)
		}
	}
}
