package mirror

import "github.com/starford/terminalart/internal/ledger"

// RecordIndex is the write and search side of the mirror. The read side
// is ledger.Reader.
type RecordIndex interface {
	ledger.Reader
	UpsertRecord(row Row) error
	DeleteByPath(path string) (uint64, error)
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

var _ RecordIndex = (*DB)(nil)
