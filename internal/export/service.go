// Package export serializes the merged repository for backup and download.
package export

import (
	"time"

	"github.com/starford/ansuz/internal/codec"
	"github.com/starford/ansuz/internal/content"
	"github.com/starford/ansuz/internal/models"
)

// SnapshotVersion identifies the snapshot document layout.
const SnapshotVersion = "1.0"

// File is one exported article: its canonical filename and rendered text.
type File struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// Service reads the repository and category store. It never mutates either.
type Service struct {
	repo *content.Repository
	cats *content.CategoryStore

	now func() time.Time
}

// NewService creates an export service over the given stores.
func NewService(repo *content.Repository, cats *content.CategoryStore) *Service {
	return &Service{repo: repo, cats: cats, now: time.Now}
}

// All returns a full point-in-time snapshot of the merged state.
func (s *Service) All() (models.Snapshot, error) {
	articles, err := s.repo.List(content.Filter{})
	if err != nil {
		return models.Snapshot{}, err
	}
	categories, err := s.cats.List()
	if err != nil {
		return models.Snapshot{}, err
	}
	return models.Snapshot{
		Articles:   articles,
		Categories: categories,
		ExportDate: s.now().UTC(),
		Version:    SnapshotVersion,
	}, nil
}

// Article resolves id in the merged view and runs the codec on it.
func (s *Service) Article(id string) (File, error) {
	a, err := s.repo.Get(id)
	if err != nil {
		return File{}, err
	}
	filename, err := codec.Filename(a)
	if err != nil {
		return File{}, err
	}
	text, err := codec.Render(a)
	if err != nil {
		return File{}, err
	}
	return File{Filename: filename, Text: text}, nil
}

// Batch produces one file per id, in input order. Any delay or stagger the
// delivery mechanism needs belongs to the caller; the result ordering is
// guaranteed here regardless.
func (s *Service) Batch(ids []string) ([]File, error) {
	out := make([]File, 0, len(ids))
	for _, id := range ids {
		f, err := s.Article(id)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
