// Package content implements the draft-overlay model: it reconciles the
// read-only site snapshot with the locally persisted draft layer into one
// merged view, and owns every mutation of that draft layer.
package content

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/site"
	"github.com/starford/ansuz/internal/storage"
)

// store is the state shared by the category store and the article
// repository: the site snapshot (a value, never re-read), the persisted
// draft layer (re-read on every operation), and the single in-process
// mutation lock that serializes read-merge-write cycles.
type store struct {
	mu   sync.Mutex
	kv   storage.Provider
	site *site.Data

	now   func() time.Time
	newID func() string
}

// New builds the category store and article repository over one shared
// draft layer.
func New(kv storage.Provider, snap *site.Data) (*CategoryStore, *Repository) {
	if snap == nil {
		snap = site.Empty()
	}
	s := &store{
		kv:    kv,
		site:  snap,
		now:   time.Now,
		newID: uuid.NewString,
	}
	cats := &CategoryStore{s: s}
	return cats, &Repository{s: s, cats: cats}
}

// draftRecord is the persisted article-draft shape. Missing fields default
// to their zero values, which keeps old records readable.
type draftRecord struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Date     string   `json:"date"`
	Excerpt  string   `json:"excerpt"`
	Content  string   `json:"content"`
}

// categoryRecord is the persisted custom-category shape.
type categoryRecord struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s *store) loadDrafts() ([]draftRecord, error) {
	var out []draftRecord
	if err := s.loadKey(storage.KeyDrafts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *store) saveDrafts(drafts []draftRecord) error {
	return s.saveKey(storage.KeyDrafts, drafts)
}

func (s *store) loadCustomCategories() ([]categoryRecord, error) {
	var out []categoryRecord
	if err := s.loadKey(storage.KeyCustomCategories, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *store) saveCustomCategories(cats []categoryRecord) error {
	return s.saveKey(storage.KeyCustomCategories, cats)
}

func (s *store) loadKey(key string, target any) error {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		return err
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("content: decode %s: %w", key, err)
	}
	return nil
}

func (s *store) saveKey(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("content: encode %s: %w", key, err)
	}
	return s.kv.Set(key, raw)
}

func (r draftRecord) toArticle() models.Article {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	category := r.Category
	if category == "" {
		category = models.Uncategorized
	}
	return models.Article{
		ID:       r.ID,
		Title:    r.Title,
		Category: category,
		Tags:     tags,
		Date:     r.Date,
		Excerpt:  r.Excerpt,
		Content:  r.Content,
		Origin:   models.OriginDraft,
	}
}
