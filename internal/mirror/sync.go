package mirror

import (
	"log/slog"

	"github.com/starford/terminalart/internal/checksum"
	"github.com/starford/terminalart/internal/metrics"
	"github.com/starford/terminalart/internal/models"
	"github.com/starford/terminalart/internal/recordfile"
	"github.com/starford/terminalart/internal/storage"
)

// Event kinds passed to EventCallback.
const (
	EventIndexed = "indexed"
	EventRemoved = "removed"
)

// EventCallback is called after a mirror change with the affected record id.
type EventCallback func(kind string, id uint64)

// Sync walks the spool and brings the mirror up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the mirror
//
// It returns the number of records written.
func Sync(db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) (int, error) {
	metas, err := store.List("")
	if err != nil {
		return 0, err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return 0, err
	}

	indexed := 0
	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		rec, err := indexFile(db, m.Path, data)
		if err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		indexed++
		logger.Debug("sync: indexed", slog.String("path", m.Path), slog.Uint64("id", rec.ID))
		notify(cb, EventIndexed, rec.ID)
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		removeFile(db, p, logger, cb)
	}

	return indexed, nil
}

// indexFile parses data and upserts it into the DB.
func indexFile(db *DB, path string, data []byte) (models.Record, error) {
	rec, err := recordfile.Parse(data)
	if err != nil {
		return models.Record{}, err
	}
	row := Row{
		Path:     path,
		Checksum: checksum.Sum(data),
		Record:   rec,
	}
	if err := db.UpsertRecord(row); err != nil {
		return models.Record{}, err
	}
	metrics.MirrorIndexed.Inc()
	return rec, nil
}

func removeFile(db *DB, path string, logger *slog.Logger, cb EventCallback) {
	id, err := db.DeleteByPath(path)
	if err != nil {
		logger.Warn("mirror: delete failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	if id == 0 {
		return
	}
	logger.Debug("mirror: removed", slog.String("path", path), slog.Uint64("id", id))
	notify(cb, EventRemoved, id)
}

func notify(cb EventCallback, kind string, id uint64) {
	if cb != nil {
		cb(kind, id)
	}
}
