// Package storage defines the persistent draft-layer abstraction.
package storage

// Draft-layer keys. The schema of the values is owned by internal/content.
const (
	KeyDrafts           = "article_drafts"
	KeyCustomCategories = "custom_categories"
)

// Provider is the narrow key-value interface the draft layer is stored
// behind. Implementations are local and synchronous; callers serialize
// mutations themselves.
type Provider interface {
	// Get returns the value stored under key. ok is false when the key has
	// never been written.
	Get(key string) (data []byte, ok bool, err error)
	// Set writes value under key, replacing any previous value.
	Set(key string, data []byte) error
	// Close releases any underlying resources.
	Close() error
}
