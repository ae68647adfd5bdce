package content

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// maxCategoryNameLen bounds category names after trimming.
const maxCategoryNameLen = 20

// CategoryStore manages the merged, layered category set: site-declared
// categories (read-only as to existence) and user-declared custom
// categories owned by the draft layer.
type CategoryStore struct {
	s *store
}

// List returns site categories first, in snapshot order, followed by custom
// categories in creation order. A custom entry whose name collides with a
// site entry is suppressed: site wins.
func (c *CategoryStore) List() ([]models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.list()
}

// list is List without the lock, for callers already holding it.
func (c *CategoryStore) list() ([]models.Category, error) {
	custom, err := c.s.loadCustomCategories()
	if err != nil {
		return nil, err
	}

	out := make([]models.Category, 0, len(c.s.site.Categories)+len(custom))
	seen := make(map[string]struct{}, len(c.s.site.Categories))
	for _, cat := range c.s.site.Categories {
		out = append(out, cat)
		seen[cat.Name] = struct{}{}
	}
	for _, rec := range custom {
		if _, dup := seen[rec.Name]; dup {
			continue
		}
		seen[rec.Name] = struct{}{}
		out = append(out, models.Category{
			Name:        rec.Name,
			Description: rec.Description,
			Origin:      models.OriginCustom,
			CreatedAt:   rec.CreatedAt,
		})
	}
	return out, nil
}

// Create adds a custom category. The name must be non-empty after trimming,
// at most 20 characters, and not already present in the merged list
// (case-sensitive exact match).
func (c *CategoryStore) Create(name, description string) (models.Category, error) {
	name = trimmed(name)
	if err := validation.Validate(name,
		validation.Required,
		validation.RuneLength(1, maxCategoryNameLen),
	); err != nil {
		return models.Category{}, fmt.Errorf("content: category name %v: %w", err, apperr.ErrValidation)
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	merged, err := c.list()
	if err != nil {
		return models.Category{}, err
	}
	for _, cat := range merged {
		if cat.Name == name {
			return models.Category{}, fmt.Errorf("content: category %q: %w", name, apperr.ErrDuplicateName)
		}
	}

	custom, err := c.s.loadCustomCategories()
	if err != nil {
		return models.Category{}, err
	}
	rec := categoryRecord{Name: name, Description: description, CreatedAt: c.s.now()}
	if err := c.s.saveCustomCategories(append(custom, rec)); err != nil {
		return models.Category{}, err
	}
	return models.Category{
		Name:        rec.Name,
		Description: rec.Description,
		Origin:      models.OriginCustom,
		CreatedAt:   rec.CreatedAt,
	}, nil
}

// Update changes the description of a custom category. The name is the join
// key and therefore immutable: a non-empty newName differing from name is
// rejected. Site-origin and unknown names report not found.
func (c *CategoryStore) Update(name, newName, description string) (models.Category, error) {
	if newName != "" && newName != name {
		return models.Category{}, fmt.Errorf("content: category name cannot change: %w", apperr.ErrImmutableField)
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	custom, err := c.s.loadCustomCategories()
	if err != nil {
		return models.Category{}, err
	}
	for i, rec := range custom {
		if rec.Name != name {
			continue
		}
		custom[i].Description = description
		if err := c.s.saveCustomCategories(custom); err != nil {
			return models.Category{}, err
		}
		return models.Category{
			Name:        rec.Name,
			Description: description,
			Origin:      models.OriginCustom,
			CreatedAt:   rec.CreatedAt,
		}, nil
	}
	return models.Category{}, fmt.Errorf("content: category %q: %w", name, apperr.ErrNotFound)
}

// Delete removes a custom category and cascades to every draft article in
// it. Site articles in the category are unaffected: the deletion cannot
// remove published content.
func (c *CategoryStore) Delete(name string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	custom, err := c.s.loadCustomCategories()
	if err != nil {
		return err
	}
	kept := custom[:0:0]
	for _, rec := range custom {
		if rec.Name != name {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(custom) {
		return fmt.Errorf("content: category %q: %w", name, apperr.ErrNotFound)
	}

	drafts, err := c.s.loadDrafts()
	if err != nil {
		return err
	}
	survivors := drafts[:0:0]
	for _, d := range drafts {
		if d.Category != name {
			survivors = append(survivors, d)
		}
	}
	if err := c.s.saveDrafts(survivors); err != nil {
		return err
	}
	if err := c.s.saveCustomCategories(kept); err != nil {
		return err
	}
	return nil
}

// exists reports whether name is present in the merged category list.
// Caller must hold the store lock.
func (c *CategoryStore) exists(name string) (bool, error) {
	merged, err := c.list()
	if err != nil {
		return false, err
	}
	for _, cat := range merged {
		if cat.Name == name {
			return true, nil
		}
	}
	return false, nil
}
