package store

import "github.com/mmcdole/flickgrid/internal/domain"

// ResultCache holds the per-session caches keyed by item ID: image bytes,
// computed display sizes and favorite flags.
//
// Entries are never evicted one at a time; only whole stores are reset.
// ResultCache is not safe for concurrent use. It must only be touched from
// the session's owning context.
type ResultCache struct {
	images    map[string][]byte
	sizes     map[string]domain.Size
	favorites map[string]bool
}

// Stats summarizes cache occupancy
type Stats struct {
	Images     int
	ImageBytes int
	Sizes      int
	Favorites  int
}

// NewResultCache creates an empty cache
func NewResultCache() *ResultCache {
	return &ResultCache{
		images:    make(map[string][]byte),
		sizes:     make(map[string]domain.Size),
		favorites: make(map[string]bool),
	}
}

// === Images ===

func (c *ResultCache) GetImage(id string) ([]byte, bool) {
	data, ok := c.images[id]
	return data, ok
}

func (c *ResultCache) PutImage(id string, data []byte) {
	c.images[id] = data
}

// === Sizes ===

func (c *ResultCache) GetSize(id string) (domain.Size, bool) {
	size, ok := c.sizes[id]
	return size, ok
}

func (c *ResultCache) PutSize(id string, size domain.Size) {
	c.sizes[id] = size
}

// === Favorites ===

// GetFavorite returns false for IDs that were never marked
func (c *ResultCache) GetFavorite(id string) bool {
	return c.favorites[id]
}

func (c *ResultCache) SetFavorite(id string, favorite bool) {
	c.favorites[id] = favorite
}

// === Invalidation ===

// ResetForNewSearch clears images and sizes. Favorites survive so a photo
// favorited under one tag stays favorited under another.
func (c *ResultCache) ResetForNewSearch() {
	c.images = make(map[string][]byte)
	c.sizes = make(map[string]domain.Size)
}

// ResetSizes clears only the layout sizes (terminal resize)
func (c *ResultCache) ResetSizes() {
	c.sizes = make(map[string]domain.Size)
}

// ResetAll clears all three stores (memory pressure)
func (c *ResultCache) ResetAll() {
	c.ResetForNewSearch()
	c.favorites = make(map[string]bool)
}

// Stats returns the current occupancy of each store
func (c *ResultCache) Stats() Stats {
	bytes := 0
	for _, data := range c.images {
		bytes += len(data)
	}
	favorites := 0
	for _, fav := range c.favorites {
		if fav {
			favorites++
		}
	}
	return Stats{
		Images:     len(c.images),
		ImageBytes: bytes,
		Sizes:      len(c.sizes),
		Favorites:  favorites,
	}
}
