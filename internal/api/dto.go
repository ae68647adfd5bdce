package api

import (
	"github.com/starford/ansuz/internal/export"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/tree"
)

// CreateCategoryRequest is the request body for creating a category.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateCategoryRequest is the request body for updating a category.
// Name, when present, must match the path name: renames are rejected.
type UpdateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SaveArticleRequest is the request body for creating or updating a draft.
type SaveArticleRequest struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Date     string   `json:"date"`
	Excerpt  string   `json:"excerpt"`
	Content  string   `json:"content"`
}

// CategoryListResponse wraps the merged category listing.
type CategoryListResponse struct {
	Categories []models.Category `json:"categories"`
}

// ArticleListResponse wraps the merged article listing.
type ArticleListResponse struct {
	Articles []models.Article `json:"articles"`
	Total    int              `json:"total"`
}

// TreeResponse wraps the category → article projection.
type TreeResponse struct {
	Tree []tree.Node `json:"tree"`
}

// BatchExportRequest names the articles to export, in delivery order.
type BatchExportRequest struct {
	IDs []string `json:"ids"`
}

// BatchExportResponse wraps the rendered files, in request order.
type BatchExportResponse struct {
	Files []export.File `json:"files"`
}
