package musicbrainz

import "sync"

// memo is a mutex-guarded lookup table keyed by MBID.
type memo[T any] struct {
	mu    sync.Mutex
	items map[string]T
}

func (m *memo[T]) get(key string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *memo[T]) put(key string, value T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]T)
	}
	m.items[key] = value
}

func (m *memo[T]) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
}

func (m *memo[T]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Cache memoizes detail and cover-art lookups for the lifetime of a client.
// Cover art stores a confirmed absence as "" so a missing cover is fetched at
// most once.
type Cache struct {
	artists    memo[*Artist]
	releases   memo[*Release]
	recordings memo[*Recording]
	labels     memo[*Label]
	coverArt   memo[string]
}

// Reset drops every memoized entry.
func (c *Cache) Reset() {
	c.artists.reset()
	c.releases.reset()
	c.recordings.reset()
	c.labels.reset()
	c.coverArt.reset()
}

// Size returns the total number of memoized entries.
func (c *Cache) Size() int {
	return c.artists.len() + c.releases.len() + c.recordings.len() + c.labels.len() + c.coverArt.len()
}
