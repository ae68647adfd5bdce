package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/site"
	"github.com/starford/ansuz/internal/storage"
)

func TestSave_NewDraftRoundTrip(t *testing.T) {
	_, repo, _ := testStores(t, siteFixture())

	saved, err := repo.Save(models.Article{
		Title:    "Fresh",
		Category: "Tech",
		Tags:     []string{"go", "draft"},
		Date:     "2024-04-01T09:00:00Z",
		Excerpt:  "short",
		Content:  "long form",
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("no id assigned")
	}
	if saved.Origin != models.OriginDraft {
		t.Errorf("origin = %q", saved.Origin)
	}

	got, err := repo.Get(saved.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Fresh" || got.Excerpt != "short" || got.Content != "long form" || got.Category != "Tech" {
		t.Errorf("fields differ: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "go" || got.Tags[1] != "draft" {
		t.Errorf("tags = %v", got.Tags)
	}
}

func TestSave_RequiredFieldsFirstMissing(t *testing.T) {
	_, repo, _ := testStores(t, site.Empty())

	cases := []struct {
		article models.Article
		field   string
	}{
		{models.Article{Excerpt: "e", Content: "c"}, "title"},
		{models.Article{Title: "t", Content: "c"}, "excerpt"},
		{models.Article{Title: "t", Excerpt: "e"}, "content"},
		{models.Article{Title: "t", Excerpt: "e", Content: "   "}, "content"},
	}
	for _, c := range cases {
		_, err := repo.Save(c.article)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("err = %v, want ErrValidation", err)
			continue
		}
		if want := c.field + " is required"; err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("err = %v, want mention of %q", err, want)
		}
	}
}

func TestSave_CategoryRules(t *testing.T) {
	cats, repo, _ := testStores(t, siteFixture())
	_, _ = cats.Create("Notes", "")

	// Empty category defaults to the sentinel.
	saved, err := repo.Save(models.Article{Title: "t", Excerpt: "e", Content: "c", Date: "2024-01-01"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Category != models.Uncategorized {
		t.Errorf("category = %q, want %q", saved.Category, models.Uncategorized)
	}

	// Known names, site or custom, pass.
	for _, name := range []string{"Tech", "Notes"} {
		if _, err := repo.Save(models.Article{Title: "t" + name, Excerpt: "e", Content: "c", Category: name, Date: "2024-01-01"}); err != nil {
			t.Errorf("Save category %q: %v", name, err)
		}
	}

	// Unknown names are rejected.
	if _, err := repo.Save(models.Article{Title: "x", Excerpt: "e", Content: "c", Category: "Ghost"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown category err = %v, want ErrValidation", err)
	}
}

func TestSave_BadDate(t *testing.T) {
	_, repo, _ := testStores(t, site.Empty())
	_, err := repo.Save(models.Article{Title: "t", Excerpt: "e", Content: "c", Date: "soon"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestSave_OverwriteById(t *testing.T) {
	_, repo, kv := testStores(t, site.Empty())

	first, err := repo.Save(models.Article{Title: "v1", Excerpt: "e", Content: "c", Date: "2024-01-01"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := repo.Save(models.Article{ID: first.ID, Title: "v2", Excerpt: "e", Content: "c", Date: "2024-01-01"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("id changed on overwrite: %q vs %q", second.ID, first.ID)
	}

	raw, _, _ := kv.Get(storage.KeyDrafts)
	var drafts []draftRecord
	_ = json.Unmarshal(raw, &drafts)
	if len(drafts) != 1 {
		t.Fatalf("stored drafts = %d, want 1", len(drafts))
	}
	if drafts[0].Title != "v2" {
		t.Errorf("stored title = %q", drafts[0].Title)
	}

	// Idempotent: saving the same final state again changes nothing.
	if _, err := repo.Save(models.Article{ID: first.ID, Title: "v2", Excerpt: "e", Content: "c", Date: "2024-01-01"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, _, _ = kv.Get(storage.KeyDrafts)
	var again []draftRecord
	_ = json.Unmarshal(raw, &again)
	if len(again) != 1 {
		t.Errorf("duplicate record after idempotent save: %d", len(again))
	}
}

func TestSave_SuppliedIDBecomesNewDraft(t *testing.T) {
	_, repo, _ := testStores(t, site.Empty())
	saved, err := repo.Save(models.Article{ID: "my-own-id", Title: "t", Excerpt: "e", Content: "c", Date: "2024-01-01"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID != "my-own-id" {
		t.Errorf("id = %q, want supplied id kept", saved.ID)
	}
}

func TestSave_SiteIDReadOnly(t *testing.T) {
	_, repo, kv := testStores(t, siteFixture())

	_, err := repo.Save(models.Article{ID: "2024/03/a/", Title: "A", Excerpt: "e", Content: "c"})
	if !errors.Is(err, apperr.ErrReadOnly) {
		t.Fatalf("err = %v, want ErrReadOnly", err)
	}

	// Draft storage untouched.
	if _, ok, _ := kv.Get(storage.KeyDrafts); ok {
		t.Error("draft layer written despite read-only rejection")
	}
}

func TestDelete(t *testing.T) {
	_, repo, _ := testStores(t, siteFixture())

	saved, _ := repo.Save(models.Article{Title: "gone soon", Excerpt: "e", Content: "c", Date: "2024-01-01"})
	if err := repo.Delete(saved.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(saved.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}

	if err := repo.Delete(saved.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	if err := repo.Delete("2024/03/a/"); !errors.Is(err, apperr.ErrReadOnly) {
		t.Errorf("site delete err = %v, want ErrReadOnly", err)
	}
}

func TestList_DraftShadowedBySiteArticle(t *testing.T) {
	_, repo, kv := testStores(t, siteFixture())

	// Stored draft colliding with site article A/Tech.
	shadow := `[{"id":"d1","title":"A","category":"Tech","date":"2024-06-01","excerpt":"e","content":"c"}]`
	_ = kv.Set(storage.KeyDrafts, []byte(shadow))

	list, err := repo.List(Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	seen := 0
	for _, a := range list {
		if a.Title == "A" && a.Category == "Tech" {
			seen++
			if a.Origin != models.OriginSite {
				t.Errorf("shadowed entry origin = %q, want site", a.Origin)
			}
		}
	}
	if seen != 1 {
		t.Errorf("A/Tech appears %d times, want exactly 1", seen)
	}

	// Suppressed, not deleted: the record survives in storage but is not
	// resolvable through the merged view.
	raw, _, _ := kv.Get(storage.KeyDrafts)
	if string(raw) != shadow {
		t.Errorf("draft storage changed: %s", raw)
	}
	if _, err := repo.Get("d1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("suppressed draft Get err = %v, want ErrNotFound", err)
	}
}

func TestList_OrderAndFilter(t *testing.T) {
	cats, repo, _ := testStores(t, siteFixture())
	_, _ = cats.Create("Notes", "")

	_, _ = repo.Save(models.Article{Title: "newest", Category: "Notes", Excerpt: "e", Content: "c", Date: "2024-12-01T00:00:00Z"})
	// Same date as the site article A to exercise the tie-break.
	_, _ = repo.Save(models.Article{Title: "tied", Category: "Notes", Excerpt: "e", Content: "c", Date: "2024-03-05T10:00:00Z"})

	list, err := repo.List(Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("len = %d, want 4", len(list))
	}
	if list[0].Title != "newest" {
		t.Errorf("first = %q", list[0].Title)
	}
	// Tie on 2024-03-05: site entry before draft.
	if list[1].Title != "A" || list[2].Title != "tied" {
		t.Errorf("tie order = %q, %q; want A then tied", list[1].Title, list[2].Title)
	}

	notes, err := repo.List(Filter{Category: "Notes"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notes) != 2 {
		t.Errorf("filtered len = %d, want 2", len(notes))
	}
	for _, a := range notes {
		if a.Category != "Notes" {
			t.Errorf("filter leaked %q", a.Category)
		}
	}
}

func TestMutations_SerializedUnderConcurrency(t *testing.T) {
	_, repo, _ := testStores(t, site.Empty())

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Save(models.Article{
				Title:   fmt.Sprintf("draft-%02d", i),
				Excerpt: "e", Content: "c", Date: "2024-01-01",
			})
			if err != nil {
				t.Errorf("Save: %v", err)
			}
		}(i)
	}
	wg.Wait()

	list, err := repo.List(Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != n {
		t.Errorf("len = %d, want %d: a read-merge-write cycle was lost", len(list), n)
	}
}
