package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/terminalart/internal/apperr"
	"github.com/starford/terminalart/internal/artifact"
	"github.com/starford/terminalart/internal/mirror"
	"github.com/starford/terminalart/internal/models"
	"github.com/starford/terminalart/internal/palette"
	"github.com/starford/terminalart/internal/render"
	"github.com/starford/terminalart/internal/timestamp"
)

const (
	cacheImmutable = "public, max-age=31536000, immutable"
	cacheMetadata  = "public, max-age=600"
	cacheNone      = "no-cache"
)

// Searcher is implemented by ledger backends that support text search.
type Searcher interface {
	Search(query string, limit int) ([]mirror.SearchResult, error)
}

// Handler holds API route handlers.
type Handler struct {
	svc      *artifact.Service
	search   Searcher
	onStaged func(id uint64)
	ogFormat render.Format
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithSearcher enables GET /search.
func WithSearcher(s Searcher) HandlerOption {
	return func(h *Handler) {
		h.search = s
	}
}

// WithStagedHook is called with the id of every record staged through the API.
func WithStagedHook(fn func(id uint64)) HandlerOption {
	return func(h *Handler) {
		h.onStaged = fn
	}
}

// WithOGFormat sets the encoding used by the social-card endpoints when
// the request does not choose one.
func WithOGFormat(f render.Format) HandlerOption {
	return func(h *Handler) {
		h.ogFormat = f
	}
}

// NewHandler creates a new Handler.
func NewHandler(svc *artifact.Service, opts ...HandlerOption) *Handler {
	h := &Handler{svc: svc, ogFormat: render.FormatPNG}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Artifact handles GET /api/artifacts/{file}, where file is "<id>.svg" or
// "<id>.png".
func (h *Handler) Artifact(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	ext := path.Ext(file)
	id, err := strconv.ParseUint(strings.TrimSuffix(file, ext), 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid token ID"))
		return
	}
	format, ok := render.ParseFormat(strings.TrimPrefix(ext, "."))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("unsupported format"))
		return
	}

	doc, err := h.svc.Render(r.Context(), artifact.Request{
		View:   render.ViewArtifact,
		Target: id,
		Format: format,
	})
	if err != nil {
		renderFailed(w, err)
		return
	}
	cc := cacheNone
	if doc.Immutable {
		cc = cacheImmutable
	}
	writeDocument(w, doc, cc)
}

// PreviewGet handles GET /api/preview.
func (h *Handler) PreviewGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, ok := queryFormat(q, render.FormatSVG)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("unsupported format"))
		return
	}

	var (
		doc artifact.Document
		err error
	)
	if q.Get("type") == "feed" {
		doc, err = h.svc.PreviewFeed(nil, format)
	} else {
		ts, _ := strconv.ParseInt(q.Get("timestamp"), 10, 64)
		doc, err = h.svc.PreviewMessage(artifact.Message{
			Username:  q.Get("username"),
			Text:      q.Get("text"),
			Timestamp: ts,
			Color:     q.Get("color"),
		}, format)
	}
	if err != nil {
		renderFailed(w, err)
		return
	}
	writeDocument(w, doc, cacheNone)
}

// PreviewPost handles POST /api/preview.
func (h *Handler) PreviewPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request"))
		return
	}
	format, ok := queryFormat(r.URL.Query(), render.FormatSVG)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("unsupported format"))
		return
	}

	var (
		doc artifact.Document
		err error
	)
	if req.Type == "feed" {
		doc, err = h.svc.PreviewFeed(req.Messages, format)
	} else {
		doc, err = h.svc.PreviewMessage(artifact.Message{
			Username:  req.Username,
			Text:      req.Text,
			Timestamp: req.Timestamp,
			Color:     req.Color,
		}, format)
	}
	if err != nil {
		renderFailed(w, err)
		return
	}
	writeDocument(w, doc, cacheNone)
}

// OGMint handles GET /api/og/mint: the feed window around tokenId.
// size=compact selects the small card.
func (h *Handler) OGMint(w http.ResponseWriter, r *http.Request) {
	view := render.ViewWindow
	if r.URL.Query().Get("size") == "compact" {
		view = render.ViewCompact
	}
	h.card(w, r, view)
}

// OGTransmission handles GET /api/og/transmission: the receipt for tokenId.
func (h *Handler) OGTransmission(w http.ResponseWriter, r *http.Request) {
	h.card(w, r, render.ViewReceipt)
}

func (h *Handler) card(w http.ResponseWriter, r *http.Request, view render.View) {
	q := r.URL.Query()
	format, ok := queryFormat(q, h.ogFormat)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("unsupported format"))
		return
	}
	doc, err := h.svc.Render(r.Context(), artifact.Request{
		View:     view,
		Target:   queryUint(q, "tokenId"),
		Total:    queryTotal(q),
		Fallback: queryFallback(q),
		Format:   format,
	})
	if err != nil {
		renderFailed(w, err)
		return
	}
	writeDocument(w, doc, cacheNone)
}

// Metadata handles GET /api/metadata/{id}.
func (h *Handler) Metadata(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid token ID"))
		return
	}
	md, err := h.svc.Metadata(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("token not found"))
		} else {
			slog.Error("metadata failed", slog.Uint64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("failed to fetch metadata"))
		}
		return
	}
	w.Header().Set("Cache-Control", cacheMetadata)
	writeJSON(w, http.StatusOK, md)
}

// Feed handles GET /api/feed.svg and /api/feed.png.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	format, ok := render.ParseFormat(strings.TrimPrefix(path.Ext(r.URL.Path), "."))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("unsupported format"))
		return
	}
	doc, err := h.svc.RecentFeed(r.Context(), format)
	if err != nil {
		renderFailed(w, err)
		return
	}
	writeDocument(w, doc, cacheNone)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if h.search == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody("search requires the mirror backend"))
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.search.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []mirror.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// StageRecord handles POST /api/records.
func (h *Handler) StageRecord(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	var req StageRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	rec := models.Record{
		ID:        req.ID,
		Author:    req.Author,
		FID:       req.FID,
		Username:  req.Username,
		Text:      req.Text,
		Timestamp: req.Timestamp,
	}
	color := req.Color
	if color == "" {
		color = palette.DefaultAccent
	}
	raw, ok := palette.Bytes3(color)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("color must be #rrggbb"))
		return
	}
	rec.Color = raw

	if err := h.svc.Stage(r.Context(), rec); err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrAlreadyExists):
			writeJSON(w, http.StatusConflict, errorBody("record already staged"))
		case errors.Is(err, apperr.ErrBackend):
			writeJSON(w, http.StatusServiceUnavailable, errorBody("staging requires the mirror backend"))
		default:
			slog.Error("stage record failed", slog.Uint64("id", rec.ID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	if h.onStaged != nil {
		h.onStaged(rec.ID)
	}
	writeJSON(w, http.StatusAccepted, StageRecordResponse{ID: rec.ID, Status: "staged"})
}

func writeDocument(w http.ResponseWriter, doc artifact.Document, cacheControl string) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("X-Render-Mode", doc.Mode.String())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Body); err != nil {
		slog.Debug("write document failed", slog.String("error", err.Error()))
	}
}

func renderFailed(w http.ResponseWriter, err error) {
	slog.Error("render failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("render failed"))
}

func queryFormat(q url.Values, def render.Format) (render.Format, bool) {
	if q.Get("format") == "" {
		return def, true
	}
	return render.ParseFormat(q.Get("format"))
}

// queryUint returns 0 for a missing or malformed value.
func queryUint(q url.Values, key string) uint64 {
	v, err := strconv.ParseUint(q.Get(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func queryTotal(q url.Values) *uint64 {
	v, err := strconv.ParseUint(q.Get("total"), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// queryFallback reads client-supplied record fields. The timestamp may be
// Unix seconds or an already formatted stamp.
func queryFallback(q url.Values) *models.Fallback {
	fb := &models.Fallback{
		Username: q.Get("username"),
		Text:     q.Get("text"),
		Color:    q.Get("color"),
	}
	if !fb.Usable() {
		return nil
	}
	raw := q.Get("timestamp")
	if sec, err := strconv.ParseInt(raw, 10, 64); err == nil {
		fb.Timestamp = &sec
	} else if sec, ok := timestamp.Parse(raw); ok {
		fb.Timestamp = &sec
	}
	return fb
}
