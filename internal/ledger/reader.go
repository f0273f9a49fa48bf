// Package ledger defines the read capability the renderers depend on.
package ledger

import (
	"context"
	"fmt"

	"github.com/starford/terminalart/internal/apperr"
	"github.com/starford/terminalart/internal/models"
)

//go:generate mockgen -source=reader.go -destination=mocks/mock_reader.go -package=mocks

// ErrAbsent marks an identifier the ledger has no record for.
var ErrAbsent = fmt.Errorf("ledger: record absent: %w", apperr.ErrNotFound)

// Result is the outcome of reading one identifier. Err is nil exactly
// when Record holds data; a record that never existed and a transient
// read failure are both reported through Err.
type Result struct {
	ID     uint64
	Record models.Record
	Err    error
}

// Found reports whether the read produced a record.
func (r Result) Found() bool {
	return r.Err == nil
}

// Reader reads records from the ledger.
type Reader interface {
	// ReadMany reads every id in one batch. It returns one Result per id, in
	// the order given; a failure on one id never affects the others.
	ReadMany(ctx context.Context, ids []uint64) []Result
	// Count returns the number of records minted so far.
	Count(ctx context.Context) (uint64, error)
}

// ReadOne reads a single record.
func ReadOne(ctx context.Context, r Reader, id uint64) (models.Record, error) {
	res := r.ReadMany(ctx, []uint64{id})
	if len(res) != 1 {
		return models.Record{}, ErrAbsent
	}
	if res[0].Err != nil {
		return models.Record{}, res[0].Err
	}
	return res[0].Record, nil
}

// Latest returns up to n of the most recent records, newest first,
// together with the total record count. Records that fail to read are
// skipped.
func Latest(ctx context.Context, r Reader, n int) ([]models.Record, uint64, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("ledger: count: %w", err)
	}
	if n <= 0 || total == 0 {
		return nil, total, nil
	}

	ids := make([]uint64, 0, n)
	for id := total; id >= 1 && len(ids) < n; id-- {
		ids = append(ids, id)
	}

	out := make([]models.Record, 0, len(ids))
	for _, res := range r.ReadMany(ctx, ids) {
		if res.Found() {
			out = append(out, res.Record)
		}
	}
	return out, total, nil
}
