package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/content"
	"github.com/starford/ansuz/internal/export"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(repo *content.Repository, cats *content.CategoryStore, exporter *export.Service, notify Notifier, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(repo, cats, exporter, notify)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Categories CRUD.
	r.Get("/categories", h.ListCategories)
	r.Post("/categories", h.CreateCategory)
	r.Put("/categories/{name}", h.UpdateCategory)
	r.Delete("/categories/{name}", h.DeleteCategory)

	// Articles CRUD. Ids may contain slashes, hence the wildcards.
	r.Get("/articles", h.ListArticles)
	r.Post("/articles", h.SaveArticle)
	r.Get("/articles/*", h.GetArticle)
	r.Delete("/articles/*", h.DeleteArticle)

	// Tree projection.
	r.Get("/tree", h.Tree)

	// Export.
	r.Get("/export", h.ExportAll)
	r.Post("/export/batch", h.ExportBatch)
	r.Get("/export/articles/*", h.ExportArticle)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
