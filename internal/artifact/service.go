// Package artifact is the rendering entry point: it resolves records,
// assembles windows and turns them into encoded documents.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/terminalart/internal/apperr"
	"github.com/starford/terminalart/internal/cache"
	"github.com/starford/terminalart/internal/checksum"
	"github.com/starford/terminalart/internal/feed"
	"github.com/starford/terminalart/internal/ledger"
	"github.com/starford/terminalart/internal/metrics"
	"github.com/starford/terminalart/internal/models"
	"github.com/starford/terminalart/internal/recordfile"
	"github.com/starford/terminalart/internal/render"
	"github.com/starford/terminalart/internal/storage"
)

// Request describes one render.
type Request struct {
	View     render.View
	Target   uint64
	Total    *uint64
	Fallback *models.Fallback
	Format   render.Format
}

// Document is an encoded artifact.
type Document struct {
	ContentType string
	Body        []byte
	Width       int
	Height      int
	Mode        render.Mode
	// Immutable is true when the document depends only on ledger data
	// that can never change. It is never set for mutable record sources.
	Immutable bool
}

// Service renders artifacts from ledger data.
type Service struct {
	reader    ledger.Reader
	assembler *feed.Assembler
	cache     cache.Store
	cacheTTL  time.Duration
	spool     storage.Provider
	publicURL string
	mutable   bool
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache stores immutable documents in store for ttl.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache, s.cacheTTL = store, ttl
	}
}

// WithSpool enables staging records into the spool.
func WithSpool(store storage.Provider) Option {
	return func(s *Service) {
		s.spool = store
	}
}

// WithPublicURL sets the base URL used in metadata links.
func WithPublicURL(url string) Option {
	return func(s *Service) {
		s.publicURL = url
	}
}

// WithMutableRecords marks the reader as a source whose records may be
// edited or removed, such as the spool mirror. Documents are then neither
// cached nor reported immutable.
func WithMutableRecords() Option {
	return func(s *Service) {
		s.mutable = true
	}
}

// WithClock overrides the clock used for default timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service reading from reader.
func New(reader ledger.Reader, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		reader: reader,
		cache:  cache.Noop{},
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.assembler = feed.NewAssembler(reader, logger, feed.WithClock(s.now))
	return s
}

// Render resolves req against the ledger and encodes the result. Missing
// data degrades to the promotional layout; only encoding failures are
// returned as errors.
func (s *Service) Render(ctx context.Context, req Request) (Document, error) {
	key := ""
	if !s.mutable && req.View == render.ViewArtifact && req.Target > 0 && !req.Fallback.Usable() {
		key = checksum.Key("render", req.View.String(), req.Format.String(), strconv.FormatUint(req.Target, 10))
		if doc, ok := s.cached(ctx, key, req.Format); ok {
			return doc, nil
		}
	}

	freq := feed.Request{
		Target:    req.Target,
		HalfWidth: req.View.HalfWidth(),
		Fallback:  req.Fallback,
		Total:     req.Total,
	}

	var win models.Window
	if req.View == render.ViewReceipt && req.Total == nil && req.Target > 0 {
		win = s.assembleWithCount(ctx, freq)
	} else {
		win = s.assembler.Assemble(ctx, freq)
	}

	scene, mode := render.Compose(win, req.View)
	doc, err := s.encode(scene, mode, req.Format)
	if err != nil {
		return Document{}, err
	}

	target, ok := win.TargetEntry()
	doc.Immutable = key != "" && mode == render.ModeSingle && ok && !target.Synthesized
	if doc.Immutable {
		if err := s.cache.Set(ctx, key, doc.Body, s.cacheTTL); err != nil {
			s.logger.Warn("artifact: cache set failed", slog.String("error", err.Error()))
		}
	}
	return doc, nil
}

// assembleWithCount reads the window and the record count concurrently.
// A failed count leaves the total unknown.
func (s *Service) assembleWithCount(ctx context.Context, freq feed.Request) models.Window {
	var (
		win   models.Window
		total uint64
		cerr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		win = s.assembler.Assemble(gctx, freq)
		return nil
	})
	g.Go(func() error {
		total, cerr = s.reader.Count(gctx)
		return nil
	})
	_ = g.Wait()

	if cerr != nil {
		s.logger.Warn("artifact: count failed", slog.String("error", cerr.Error()))
		return win
	}
	win.Total = &total
	return win
}

// Window assembles the records around target without rendering them.
func (s *Service) Window(ctx context.Context, target uint64, halfWidth int, fb *models.Fallback) models.Window {
	return s.assembler.Assemble(ctx, feed.Request{Target: target, HalfWidth: halfWidth, Fallback: fb})
}

// RecentFeed renders the latest records, newest first, as a feed list.
func (s *Service) RecentFeed(ctx context.Context, format render.Format) (Document, error) {
	records, _, err := ledger.Latest(ctx, s.reader, render.FeedListMax)
	if err != nil {
		s.logger.Warn("artifact: recent feed", slog.String("error", err.Error()))
	}
	entries := make([]models.Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, feed.FromRecord(r.ID, r))
	}
	return s.encode(render.FeedList(entries), render.ModeWindow, format)
}

// Stage writes rec into the spool, where the mirror picks it up. It
// stands in for a write the read path has not indexed yet.
func (s *Service) Stage(_ context.Context, rec models.Record) error {
	if s.spool == nil {
		return fmt.Errorf("artifact: stage: %w: no spool configured", apperr.ErrBackend)
	}
	if err := recordfile.Validate(rec); err != nil {
		return err
	}
	name := recordfile.Name(rec.ID)
	switch _, err := s.spool.Read(name); {
	case err == nil:
		return fmt.Errorf("artifact: stage %d: %w", rec.ID, apperr.ErrAlreadyExists)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("artifact: stage %d: %w", rec.ID, err)
	}
	data, err := recordfile.Marshal(rec)
	if err != nil {
		return err
	}
	return s.spool.Write(name, data)
}

func (s *Service) encode(scene render.Scene, mode render.Mode, format render.Format) (Document, error) {
	body, err := render.Encode(scene, format)
	if err != nil {
		metrics.RenderFailures.Inc()
		return Document{}, fmt.Errorf("artifact: encode %s: %w", format, err)
	}
	metrics.RendersTotal.WithLabelValues(mode.String(), format.String()).Inc()
	return Document{
		ContentType: format.ContentType(),
		Body:        body,
		Width:       scene.Width,
		Height:      scene.Height,
		Mode:        mode,
	}, nil
}

func (s *Service) cached(ctx context.Context, key string, format render.Format) (Document, bool) {
	body, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("artifact: cache get failed", slog.String("error", err.Error()))
		return Document{}, false
	case !ok:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return Document{}, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return Document{
		ContentType: format.ContentType(),
		Body:        body,
		Width:       render.ArtifactSize,
		Height:      render.ArtifactSize,
		Mode:        render.ModeSingle,
		Immutable:   true,
	}, true
}

func isAbsent(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
