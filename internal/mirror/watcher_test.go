package mirror

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/terminalart/internal/recordfile"
	"github.com/starford/terminalart/internal/storage"
)

// watcherTestEnv sets up a spool dir, storage and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	spoolDir := t.TempDir()
	store, err := storage.NewFS(spoolDir)
	if err != nil {
		t.Fatal(err)
	}
	return spoolDir, store, testDB(t)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func writeRecord(t *testing.T, dir string, id uint64) {
	t.Helper()
	data, err := recordfile.Marshal(record(id, "anon", "hello world from the public terminal"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, recordfile.Name(id)), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func mirrored(db *DB, id uint64) bool {
	return db.ReadMany(context.Background(), []uint64{id})[0].Found()
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	spoolDir, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []uint64

	go Watch(ctx, db, store, spoolDir, quietLogger(), func(kind string, id uint64) {
		if kind != EventIndexed {
			return
		}
		mu.Lock()
		events = append(events, id)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)
	writeRecord(t, spoolDir, 11)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return mirrored(db, 11)
	}, "new record not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, id := range events {
			if id == 11 {
				return true
			}
		}
		return false
	}, "expected indexed callback for 11")
}

func TestWatcher_DeleteRemovesFromMirror(t *testing.T) {
	spoolDir, store, db := watcherTestEnv(t)

	writeRecord(t, spoolDir, 12)
	_, _ = Sync(db, store, quietLogger(), nil)
	if !mirrored(db, 12) {
		t.Fatal("precondition: record should be mirrored")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, spoolDir, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(spoolDir, recordfile.Name(12)))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !mirrored(db, 12)
	}, "deleted record still mirrored")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	spoolDir, store, db := watcherTestEnv(t)

	writeRecord(t, spoolDir, 13)
	_, _ = Sync(db, store, quietLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, spoolDir, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(spoolDir, "13.yaml"), filepath.Join(spoolDir, "13-moved.yaml"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.AllChecksums()
		_, oldOK := cs["13.yaml"]
		_, newOK := cs["13-moved.yaml"]
		return !oldOK && newOK && mirrored(db, 13)
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}
