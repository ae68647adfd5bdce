package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/content"
	"github.com/starford/ansuz/internal/export"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/tree"
)

// Notifier publishes change events after successful mutations. The data
// layer stays pure; pushing to the UI is this layer's concern.
type Notifier interface {
	PublishChange(kind, id string)
}

// Handler holds the API route handlers.
type Handler struct {
	repo     *content.Repository
	cats     *content.CategoryStore
	exporter *export.Service
	notify   Notifier
}

// NewHandler creates a Handler. notify may be nil.
func NewHandler(repo *content.Repository, cats *content.CategoryStore, exporter *export.Service, notify Notifier) *Handler {
	return &Handler{repo: repo, cats: cats, exporter: exporter, notify: notify}
}

func (h *Handler) changed(kind, id string) {
	if h.notify != nil {
		h.notify.PublishChange(kind, id)
	}
}

// wildcardParam extracts the trailing path segment from a wildcard route.
// Article ids derived from published paths contain slashes, so routes use
// /* and decode here (encoded slashes from API clients included).
func wildcardParam(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListCategories handles GET /categories.
func (h *Handler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	cats, err := h.cats.List()
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CategoryListResponse{Categories: cats})
}

// CreateCategory handles POST /categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	cat, err := h.cats.Create(req.Name, req.Description)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	h.changed("category.created", cat.Name)
	writeJSON(w, http.StatusCreated, cat)
}

// UpdateCategory handles PUT /categories/{name}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	cat, err := h.cats.Update(name, req.Name, req.Description)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	h.changed("category.updated", cat.Name)
	writeJSON(w, http.StatusOK, cat)
}

// DeleteCategory handles DELETE /categories/{name}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.cats.Delete(name); err != nil {
		writeAppErr(w, err)
		return
	}
	h.changed("category.deleted", name)
	w.WriteHeader(http.StatusNoContent)
}

// ListArticles handles GET /articles with an optional category filter.
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.repo.List(content.Filter{Category: r.URL.Query().Get("category")})
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ArticleListResponse{Articles: articles, Total: len(articles)})
}

// GetArticle handles GET /articles/*.
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id := wildcardParam(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	a, err := h.repo.Get(id)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// SaveArticle handles POST /articles: create when no id is supplied,
// overwrite-in-place otherwise.
func (h *Handler) SaveArticle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req SaveArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	isNew := req.ID == ""
	saved, err := h.repo.Save(models.Article{
		ID:       req.ID,
		Title:    req.Title,
		Category: req.Category,
		Tags:     req.Tags,
		Date:     req.Date,
		Excerpt:  req.Excerpt,
		Content:  req.Content,
	})
	if err != nil {
		writeAppErr(w, err)
		return
	}
	h.changed("article.saved", saved.ID)
	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	writeJSON(w, status, saved)
}

// DeleteArticle handles DELETE /articles/*.
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id := wildcardParam(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	if err := h.repo.Delete(id); err != nil {
		writeAppErr(w, err)
		return
	}
	h.changed("article.deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// Tree handles GET /tree.
func (h *Handler) Tree(w http.ResponseWriter, _ *http.Request) {
	nodes, err := tree.Project(h.repo, h.cats)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TreeResponse{Tree: nodes})
}

// ExportAll handles GET /export: the full snapshot document.
func (h *Handler) ExportAll(w http.ResponseWriter, _ *http.Request) {
	snap, err := h.exporter.All()
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ExportArticle handles GET /export/articles/*: the canonical Markdown file
// as a download.
func (h *Handler) ExportArticle(w http.ResponseWriter, r *http.Request) {
	id := wildcardParam(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	f, err := h.exporter.Article(id)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(f.Text))
}

// ExportBatch handles POST /export/batch. Result order matches request
// order; any stagger between downloads is the client's business.
func (h *Handler) ExportBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("ids are required"))
		return
	}
	files, err := h.exporter.Batch(req.IDs)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BatchExportResponse{Files: files})
}
