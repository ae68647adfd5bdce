// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ansuz authoring tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/content"
	"github.com/starford/ansuz/internal/export"
	"github.com/starford/ansuz/internal/models"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp      *server.MCPServer
	repo     *content.Repository
	cats     *content.CategoryStore
	exporter *export.Service
}

// New creates a new MCP server with all Ansuz tools registered.
func New(repo *content.Repository, cats *content.CategoryStore, exporter *export.Service) *Server {
	s := &Server{repo: repo, cats: cats, exporter: exporter}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_articles",
		mcp.WithDescription("List articles (published posts and local drafts merged), newest first."),
		mcp.WithString("category", mcp.Description("Optional category name to filter by")),
	), s.listArticles)

	s.mcp.AddTool(mcp.NewTool("read_article",
		mcp.WithDescription("Read an article as its canonical Markdown file (YAML frontmatter plus body)."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Article id (published path or draft id)")),
	), s.readArticle)

	s.mcp.AddTool(mcp.NewTool("save_article",
		mcp.WithDescription("Create or overwrite a draft. Omit id to create. Title, excerpt and "+
			"content are required; the category must exist. Published articles are read-only. "+
			"Read the contract first via the get_article_contract tool or the "+
			"ansuz://article-format resource."),
		mcp.WithString("id", mcp.Description("Draft id to overwrite (empty to create)")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Article title")),
		mcp.WithString("category", mcp.Description("Category name (defaults to uncategorized)")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithString("date", mcp.Description("Publication date (ISO-8601; defaults to now)")),
		mcp.WithString("excerpt", mcp.Required(), mcp.Description("Short summary")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown body")),
	), s.saveArticle)

	s.mcp.AddTool(mcp.NewTool("delete_article",
		mcp.WithDescription("Delete a draft. Published articles cannot be deleted."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Draft id")),
	), s.deleteArticle)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List categories with article counts, site categories first."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("create_category",
		mcp.WithDescription("Create a custom category. Names are capped at 20 characters and must "+
			"be unique across site and custom categories."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Category name")),
		mcp.WithString("description", mcp.Description("Optional description")),
	), s.createCategory)

	s.mcp.AddTool(mcp.NewTool("delete_category",
		mcp.WithDescription("Delete a custom category and every draft filed under it. "+
			"Site categories cannot be deleted."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Category name")),
	), s.deleteCategory)

	s.mcp.AddTool(mcp.NewTool("export_snapshot",
		mcp.WithDescription("Export the full workspace (articles and categories) as a JSON snapshot."),
	), s.exportSnapshot)

	s.mcp.AddTool(mcp.NewTool("get_article_contract",
		mcp.WithDescription("Returns the canonical Ansuz article format contract. "+
			"Call this before saving articles to ensure correct structure."),
	), s.getArticleContract)

	// Resource: article format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://article-format", "Article Format Contract",
			mcp.WithResourceDescription("Canonical Markdown article format produced by export."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readArticleFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := req.GetString("category", "")
	articles, err := s.repo.List(content.Filter{Category: category})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(articles, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f, err := s.exporter.Article(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(f.Text), nil
}

func (s *Server) saveArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	excerpt, err := req.RequireString("excerpt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var tags []string
	for _, t := range strings.Split(req.GetString("tags", ""), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	saved, err := s.repo.Save(models.Article{
		ID:       req.GetString("id", ""),
		Title:    title,
		Category: req.GetString("category", ""),
		Tags:     tags,
		Date:     req.GetString("date", ""),
		Excerpt:  excerpt,
		Content:  body,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s", saved.ID)), nil
}

func (s *Server) deleteArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.repo.Delete(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cats, err := s.cats.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	articles, err := s.repo.List(content.Filter{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	counts := make(map[string]int, len(cats))
	for _, a := range articles {
		counts[a.Category]++
	}
	for i := range cats {
		cats[i].Count = counts[cats[i].Name]
	}
	out, _ := json.MarshalIndent(cats, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cat, err := s.cats.Create(name, req.GetString("description", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", cat.Name)), nil
}

func (s *Server) deleteCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.cats.Delete(name); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", name)), nil
}

func (s *Server) exportSnapshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.exporter.All()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(snap, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getArticleContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ArticleFormatContract), nil
}

func (s *Server) readArticleFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://article-format",
			MIMEType: "text/markdown",
			Text:     ArticleFormatContract,
		},
	}, nil
}
