package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ansuz/internal/content"
	"github.com/starford/ansuz/internal/export"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/site"
	"github.com/starford/ansuz/internal/storage"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	snap := &site.Data{
		Categories: []models.Category{{Name: "Tech", Origin: models.OriginSite}},
		Articles: []models.Article{
			{ID: "2024/03/a/", Title: "A", Category: "Tech", Tags: []string{}, Date: "2024-03-05T10:00:00Z", Excerpt: "pe", Content: "pc", Path: "2024/03/a/", Origin: models.OriginSite},
		},
	}
	cats, repo := content.New(storage.NewMemory(), snap)
	return New(repo, cats, export.NewService(repo, cats))
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_articles":
		result, err = srv.listArticles(ctx, req)
	case "read_article":
		result, err = srv.readArticle(ctx, req)
	case "save_article":
		result, err = srv.saveArticle(ctx, req)
	case "delete_article":
		result, err = srv.deleteArticle(ctx, req)
	case "list_categories":
		result, err = srv.listCategories(ctx, req)
	case "create_category":
		result, err = srv.createCategory(ctx, req)
	case "delete_category":
		result, err = srv.deleteCategory(ctx, req)
	case "export_snapshot":
		result, err = srv.exportSnapshot(ctx, req)
	case "get_article_contract":
		result, err = srv.getArticleContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSaveAndReadArticle(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "save_article", map[string]interface{}{
		"title":    "Draft",
		"category": "Tech",
		"tags":     "go, notes",
		"date":     "2024-06-01T12:00:00Z",
		"excerpt":  "e",
		"content":  "body",
	})
	text := resultText(r)
	if r.IsError || !strings.HasPrefix(text, "saved: ") {
		t.Fatalf("save result = %q", text)
	}
	id := strings.TrimPrefix(text, "saved: ")

	r = callTool(t, srv, "read_article", map[string]interface{}{"id": id})
	text = resultText(r)
	if !strings.HasPrefix(text, "---\ntitle: Draft\n") {
		t.Errorf("read result = %q", text)
	}
	if !strings.Contains(text, "  - go\n  - notes\n") {
		t.Errorf("tags missing from frontmatter: %q", text)
	}
}

func TestSaveArticle_MissingContent(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "save_article", map[string]interface{}{
		"title":   "Draft",
		"excerpt": "e",
	})
	if !r.IsError {
		t.Error("expected error for missing content")
	}
}

func TestReadArticleMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_article", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing article")
	}
}

func TestDeletePublishedRejected(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "delete_article", map[string]interface{}{"id": "2024/03/a/"})
	if !r.IsError {
		t.Error("expected error deleting a published article")
	}
}

func TestCategoryTools(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "create_category", map[string]interface{}{"name": "Notes"})
	if resultText(r) != "created: Notes" {
		t.Fatalf("create result = %q", resultText(r))
	}

	r = callTool(t, srv, "create_category", map[string]interface{}{"name": "Tech"})
	if !r.IsError {
		t.Error("expected error for duplicate category")
	}

	r = callTool(t, srv, "list_categories", map[string]interface{}{})
	if text := resultText(r); !strings.Contains(text, "Notes") || !strings.Contains(text, "Tech") {
		t.Errorf("list = %q", text)
	}

	r = callTool(t, srv, "delete_category", map[string]interface{}{"name": "Notes"})
	if resultText(r) != "deleted: Notes" {
		t.Errorf("delete result = %q", resultText(r))
	}
}

func TestListCategoriesCounts(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "create_category", map[string]interface{}{"name": "Notes"})
	callTool(t, srv, "save_article", map[string]interface{}{
		"title": "d1", "category": "Tech", "excerpt": "e", "content": "c",
	})

	r := callTool(t, srv, "list_categories", map[string]interface{}{})
	text := resultText(r)

	var cats []models.Category
	if err := json.Unmarshal([]byte(text), &cats); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, text)
	}
	byName := map[string]int{}
	for _, c := range cats {
		byName[c.Name] = c.Count
	}
	if byName["Tech"] != 2 {
		t.Errorf("Tech count = %d, want 2 (published + draft)", byName["Tech"])
	}
	if byName["Notes"] != 0 {
		t.Errorf("Notes count = %d, want 0", byName["Notes"])
	}
}

func TestListArticlesFilter(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "save_article", map[string]interface{}{
		"title": "n1", "category": "Tech", "excerpt": "e", "content": "c",
	})

	r := callTool(t, srv, "list_articles", map[string]interface{}{"category": "Tech"})
	text := resultText(r)
	if !strings.Contains(text, "\"n1\"") || !strings.Contains(text, "\"A\"") {
		t.Errorf("list = %q", text)
	}
}

func TestExportSnapshot(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "export_snapshot", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, `"version": "1.0"`) {
		t.Errorf("snapshot = %q", text)
	}
}

func TestContract(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_article_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "Article Format Contract") {
		t.Error("contract text missing")
	}
}
