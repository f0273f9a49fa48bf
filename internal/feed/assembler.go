// Package feed assembles the window of records surrounding a target
// identifier, merging client fallback data when the read path lags behind
// a just-submitted write.
package feed

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/starford/terminalart/internal/ledger"
	"github.com/starford/terminalart/internal/metrics"
	"github.com/starford/terminalart/internal/models"
	"github.com/starford/terminalart/internal/palette"
	"github.com/starford/terminalart/internal/timestamp"
)

// Request describes one window to assemble.
type Request struct {
	Target    uint64
	HalfWidth int
	Fallback  *models.Fallback
	Total     *uint64
}

// Assembler builds feed windows from a ledger reader. It holds no
// per-request state and is safe for concurrent use.
type Assembler struct {
	reader ledger.Reader
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock overrides the clock used to stamp synthesized entries.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// NewAssembler creates an Assembler reading from reader.
func NewAssembler(reader ledger.Reader, logger *slog.Logger, opts ...Option) *Assembler {
	a := &Assembler{
		reader: reader,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Candidates returns target-k … target+k, dropping identifiers below 1
// and identifiers past the top of the id range.
func Candidates(target uint64, k int) []uint64 {
	if target == 0 {
		return nil
	}
	k = max(k, 0)
	ids := make([]uint64, 0, 2*k+1)
	for off := -k; off <= k; off++ {
		switch {
		case off < 0:
			if uint64(-off) >= target {
				continue
			}
			ids = append(ids, target-uint64(-off))
		default:
			if target > math.MaxUint64-uint64(off) {
				continue
			}
			ids = append(ids, target+uint64(off))
		}
	}
	return ids
}

// Assemble reads the window around req.Target in one batch. Identifiers
// that fail to resolve are left out. When the target itself is missing
// and usable fallback data was supplied, an entry is synthesized from it;
// ledger data always wins over fallback data. The result is sorted by
// identifier with no duplicates.
func (a *Assembler) Assemble(ctx context.Context, req Request) models.Window {
	win := models.Window{Target: req.Target, Total: req.Total}

	ids := Candidates(req.Target, req.HalfWidth)
	if len(ids) == 0 {
		return win
	}
	wanted := lo.SliceToMap(ids, func(id uint64) (uint64, struct{}) { return id, struct{}{} })

	entries := make([]models.Entry, 0, len(ids)+1)
	for _, res := range a.reader.ReadMany(ctx, ids) {
		if _, ok := wanted[res.ID]; !ok {
			continue
		}
		if !res.Found() {
			metrics.LedgerReads.WithLabelValues("absent").Inc()
			a.logger.Debug("feed: record unresolved",
				slog.Uint64("id", res.ID),
				slog.String("error", res.Err.Error()))
			continue
		}
		metrics.LedgerReads.WithLabelValues("found").Inc()
		entries = append(entries, FromRecord(res.ID, res.Record))
	}

	present := lo.ContainsBy(entries, func(e models.Entry) bool { return e.ID == req.Target })
	if !present && req.Fallback.Usable() {
		metrics.FallbackMerges.Inc()
		a.logger.Info("feed: target synthesized from fallback", slog.Uint64("id", req.Target))
		entries = append(entries, Synthesize(req.Target, *req.Fallback, a.now()))
	}

	entries = lo.UniqBy(entries, func(e models.Entry) uint64 { return e.ID })
	slices.SortFunc(entries, func(x, y models.Entry) int { return cmp.Compare(x.ID, y.ID) })
	win.Entries = entries
	return win
}

// FromRecord derives the presentation entry for a ledger record.
func FromRecord(id uint64, r models.Record) models.Entry {
	return models.Entry{
		ID:       id,
		Username: r.Username,
		Text:     r.Text,
		Color:    palette.Normalize(palette.FromBytes3(r.Color)),
		Posted:   r.Timestamp,
		Stamp:    timestamp.Format(r.Timestamp),
	}
}

// Synthesize builds an entry from client fallback data. A missing color
// becomes the default accent and a missing timestamp becomes now.
func Synthesize(id uint64, fb models.Fallback, now time.Time) models.Entry {
	color := fb.Color
	if color == "" {
		color = palette.DefaultAccent
	}
	posted := now.Unix()
	if fb.Timestamp != nil {
		posted = *fb.Timestamp
	}
	return models.Entry{
		ID:          id,
		Username:    fb.Username,
		Text:        fb.Text,
		Color:       palette.Normalize(color),
		Posted:      posted,
		Stamp:       timestamp.Format(posted),
		Synthesized: true,
	}
}
