package content

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/codec"
	"github.com/starford/ansuz/internal/models"
)

// Repository merges site-origin (published, immutable) articles with the
// persisted draft layer into one logical collection and exposes CRUD over
// the draft side of it.
type Repository struct {
	s    *store
	cats *CategoryStore
}

// Filter restricts List results.
type Filter struct {
	// Category, when non-empty, keeps only articles in that category.
	Category string
}

// List returns the merged collection sorted by date descending. A draft
// whose (title, category) pair collides with a site article is suppressed:
// the published entry is authoritative. Ties keep insertion order, site
// before draft.
func (r *Repository) List(filter Filter) ([]models.Article, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	merged, err := r.merged()
	if err != nil {
		return nil, err
	}
	if filter.Category == "" {
		return merged, nil
	}
	out := merged[:0:0]
	for _, a := range merged {
		if a.Category == filter.Category {
			out = append(out, a)
		}
	}
	return out, nil
}

// Get resolves id against the merged view, so suppressed drafts are not
// reachable here.
func (r *Repository) Get(id string) (models.Article, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.get(id)
}

func (r *Repository) get(id string) (models.Article, error) {
	merged, err := r.merged()
	if err != nil {
		return models.Article{}, err
	}
	for _, a := range merged {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Article{}, fmt.Errorf("content: article %q: %w", id, apperr.ErrNotFound)
}

// Save creates or overwrites a draft. An id matching a site article is
// rejected as read-only; an id matching an existing draft overwrites it in
// place; anything else becomes a new draft, with a fresh id when none is
// supplied. Saving the same data twice yields the same stored record.
func (r *Repository) Save(a models.Article) (models.Article, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.isSiteID(a.ID) {
		return models.Article{}, fmt.Errorf("content: article %q is published: %w", a.ID, apperr.ErrReadOnly)
	}

	// Required fields, reported first-missing-first.
	for _, f := range []struct{ name, value string }{
		{"title", a.Title},
		{"excerpt", a.Excerpt},
		{"content", a.Content},
	} {
		if trimmed(f.value) == "" {
			return models.Article{}, fmt.Errorf("content: %s is required: %w", f.name, apperr.ErrValidation)
		}
	}

	a.Category = trimmed(a.Category)
	if a.Category == "" {
		a.Category = models.Uncategorized
	} else if a.Category != models.Uncategorized {
		known, err := r.cats.exists(a.Category)
		if err != nil {
			return models.Article{}, err
		}
		if !known {
			return models.Article{}, fmt.Errorf("content: unknown category %q: %w", a.Category, apperr.ErrValidation)
		}
	}

	if trimmed(a.Date) == "" {
		a.Date = r.s.now().UTC().Format(time.RFC3339)
	} else if _, err := codec.ParseDate(a.Date); err != nil {
		return models.Article{}, err
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if a.ID == "" {
		a.ID = r.s.newID()
	}
	a.Origin = models.OriginDraft
	a.Path = ""

	drafts, err := r.s.loadDrafts()
	if err != nil {
		return models.Article{}, err
	}
	rec := draftRecord{
		ID:       a.ID,
		Title:    a.Title,
		Category: a.Category,
		Tags:     a.Tags,
		Date:     a.Date,
		Excerpt:  a.Excerpt,
		Content:  a.Content,
	}
	replaced := false
	for i := range drafts {
		if drafts[i].ID == a.ID {
			drafts[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		drafts = append(drafts, rec)
	}
	if err := r.s.saveDrafts(drafts); err != nil {
		return models.Article{}, err
	}
	return a, nil
}

// Delete removes a draft from storage. Site ids are read-only; ids that do
// not resolve in the merged view report not found.
func (r *Repository) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.isSiteID(id) {
		return fmt.Errorf("content: article %q is published: %w", id, apperr.ErrReadOnly)
	}
	if _, err := r.get(id); err != nil {
		return err
	}

	drafts, err := r.s.loadDrafts()
	if err != nil {
		return err
	}
	kept := drafts[:0:0]
	for _, d := range drafts {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	return r.s.saveDrafts(kept)
}

// merged re-reads the draft layer and reconciles it with the site snapshot.
// Caller must hold the store lock.
func (r *Repository) merged() ([]models.Article, error) {
	drafts, err := r.s.loadDrafts()
	if err != nil {
		return nil, err
	}

	out := make([]models.Article, 0, len(r.s.site.Articles)+len(drafts))
	published := make(map[[2]string]struct{}, len(r.s.site.Articles))
	for _, a := range r.s.site.Articles {
		out = append(out, a)
		published[[2]string{a.Title, a.Category}] = struct{}{}
	}
	for _, d := range drafts {
		a := d.toArticle()
		if _, shadowed := published[[2]string{a.Title, a.Category}]; shadowed {
			// The published entry wins; the draft stays in storage but is
			// suppressed from the merged view.
			continue
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return sortDate(out[i].Date).After(sortDate(out[j].Date))
	})
	return out, nil
}

func (r *Repository) isSiteID(id string) bool {
	if id == "" {
		return false
	}
	for _, a := range r.s.site.Articles {
		if a.ID == id {
			return true
		}
	}
	return false
}

// sortDate tolerates unparseable stored dates: they sort last rather than
// failing the whole listing.
func sortDate(s string) time.Time {
	t, err := codec.ParseDate(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
