// Package models defines the domain types for Ansuz.
package models

import "time"

// Origin tags where a record comes from: the published site snapshot or the
// locally persisted draft layer.
type Origin string

const (
	OriginSite  Origin = "site"
	OriginDraft Origin = "draft"
	// OriginCustom marks a user-created category in the draft layer.
	OriginCustom Origin = "custom"
)

// Uncategorized is the sentinel category assigned to articles saved without
// an explicit category.
const Uncategorized = "uncategorized"

// Category is one entry in the merged category set, keyed by Name.
type Category struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Count       int       `json:"count"`
	Origin      Origin    `json:"origin"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Article is one entry in the merged article collection.
//
// Site-origin articles are read-only to the draft layer; draft-origin
// articles are fully owned by it. Date carries the raw ISO 8601 string as
// stored so the codec can normalize it once, at serialization time.
type Article struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Date     string   `json:"date"`
	Excerpt  string   `json:"excerpt"`
	Content  string   `json:"content"`
	Path     string   `json:"path,omitempty"`
	Origin   Origin   `json:"origin"`
}

// Snapshot is a full point-in-time export of the merged repository state.
type Snapshot struct {
	Articles   []Article  `json:"articles"`
	Categories []Category `json:"categories"`
	ExportDate time.Time  `json:"exportDate"`
	Version    string     `json:"version"`
}
