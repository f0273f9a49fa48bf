package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced on the write
// and event routes; images and metadata are always public.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()

	// Images are embedded and fetched from anywhere.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Render-Mode"},
		MaxAge:         300,
	}))

	// Rendered documents.
	r.Get("/artifacts/{file}", h.Artifact)
	r.Get("/preview", h.PreviewGet)
	r.Post("/preview", h.PreviewPost)
	r.Get("/og/mint", h.OGMint)
	r.Get("/og/transmission", h.OGTransmission)
	r.Get("/feed.svg", h.Feed)
	r.Get("/feed.png", h.Feed)

	// Token metadata.
	r.Get("/metadata/{id}", h.Metadata)

	// Search.
	r.Get("/search", h.Search)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))
		r.Post("/records", h.StageRecord)

		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
