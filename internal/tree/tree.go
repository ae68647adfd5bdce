// Package tree builds the category → article projection consumed by UIs.
package tree

import (
	"github.com/starford/ansuz/internal/content"
	"github.com/starford/ansuz/internal/models"
)

// Node is one category with its articles attached. Empty categories keep an
// empty (non-nil) Articles slice so consumers can offer a "create first
// article" affordance.
type Node struct {
	Category models.Category  `json:"category"`
	Articles []models.Article `json:"articles"`
}

// Project recomputes the full tree from current state. It is a pure read:
// recomputed after every mutation rather than incrementally patched, which
// is fine at personal-blog scale.
func Project(repo *content.Repository, cats *content.CategoryStore) ([]Node, error) {
	categories, err := cats.List()
	if err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(categories))
	for _, cat := range categories {
		articles, err := repo.List(content.Filter{Category: cat.Name})
		if err != nil {
			return nil, err
		}
		if articles == nil {
			articles = []models.Article{}
		}
		out = append(out, Node{Category: cat, Articles: articles})
	}
	return out, nil
}
