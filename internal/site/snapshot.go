// Package site loads the published-content snapshot supplied at startup.
//
// The snapshot is a value: it is read once per process and never re-read
// mid-session. If the published content changes, staleness is accepted until
// the next start.
package site

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/models"
)

// rawSnapshot is the inbound JSON shape. Optional fields are defaulted
// during normalization.
type rawSnapshot struct {
	Categories []rawCategory `json:"categories"`
	Posts      []rawPost     `json:"posts"`
}

type rawCategory struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

type rawPost struct {
	ID         string   `json:"id"`
	Path       string   `json:"path"`
	Title      string   `json:"title"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
	Date       string   `json:"date"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content"`
}

// Data holds the normalized site-origin content.
type Data struct {
	Categories []models.Category
	Articles   []models.Article
}

// Empty returns a snapshot with no published content.
func Empty() *Data {
	return &Data{}
}

// Load reads and normalizes the snapshot file at path.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("site: read snapshot: %w", err)
	}
	return Parse(raw)
}

// Parse normalizes a snapshot document. Category order and post order are
// preserved as supplied.
func Parse(raw []byte) (*Data, error) {
	var snap rawSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("site: parse snapshot: %w", err)
	}

	d := &Data{}
	for _, c := range snap.Categories {
		if c.Name == "" {
			continue
		}
		d.Categories = append(d.Categories, models.Category{
			Name:        c.Name,
			Description: c.Description,
			Count:       c.Count,
			Origin:      models.OriginSite,
		})
	}
	for _, p := range snap.Posts {
		d.Articles = append(d.Articles, normalizePost(p))
	}
	return d, nil
}

// normalizePost fills documented defaults: the first listed category (or the
// uncategorized sentinel), the current time for a missing date, and a stable
// identity derived from the path or, as a last resort, from a checksum of
// the title and date.
func normalizePost(p rawPost) models.Article {
	category := models.Uncategorized
	if len(p.Categories) > 0 && p.Categories[0] != "" {
		category = p.Categories[0]
	}
	date := p.Date
	if date == "" {
		date = time.Now().UTC().Format(time.RFC3339)
	}
	id := p.ID
	if id == "" {
		id = p.Path
	}
	if id == "" {
		id = checksum.Token(p.Title, date)
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Article{
		ID:       id,
		Title:    p.Title,
		Category: category,
		Tags:     tags,
		Date:     date,
		Excerpt:  p.Excerpt,
		Content:  p.Content,
		Path:     p.Path,
		Origin:   models.OriginSite,
	}
}
