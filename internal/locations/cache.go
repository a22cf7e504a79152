// Package locations resolves place names to pages in the Locations database,
// creating a page the first time a name is seen.
package locations

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"notionbrainz/internal/logging"
	"notionbrainz/internal/notion"
	"notionbrainz/internal/services"
	"notionbrainz/internal/textutil"
)

// Icon marks location pages.
const Icon = "📍"

// Store is the page-database surface the cache needs.
type Store interface {
	Schema(ctx context.Context, databaseID string) (*notion.Schema, error)
	QueryDatabase(ctx context.Context, databaseID string, q notion.Query) ([]notion.Page, error)
	CreatePage(ctx context.Context, databaseID string, props notion.Properties, opts notion.PageOptions) (string, error)
}

// Cache maps lowercased location names to page IDs. It loads the whole
// database on first use and remembers pages it creates.
type Cache struct {
	store      Store
	databaseID string
	logger     *slog.Logger

	mu       sync.Mutex
	loaded   bool
	titleKey string
	pages    map[string]string
}

// New returns a cache over the Locations database. An empty databaseID
// yields a disabled cache whose lookups return "".
func New(store Store, databaseID string, logger *slog.Logger) *Cache {
	return &Cache{
		store:      store,
		databaseID: strings.TrimSpace(databaseID),
		logger:     logging.NewComponentLogger(logger, "locations"),
	}
}

// Enabled reports whether a Locations database is configured.
func (c *Cache) Enabled() bool {
	return c != nil && c.databaseID != ""
}

// FindOrCreate returns the page ID for name, creating the page when the name
// has not been seen in any letter case.
func (c *Cache) FindOrCreate(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if !c.Enabled() || name == "" {
		return "", nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(ctx); err != nil {
		return "", err
	}
	key := textutil.FoldKey(name)
	if id, ok := c.pages[key]; ok {
		return id, nil
	}
	if c.titleKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "locations", "create", "locations database has no title property", nil)
	}
	id, err := c.store.CreatePage(ctx, c.databaseID, notion.Properties{c.titleKey: notion.Title(name)}, notion.PageOptions{Icon: Icon})
	if err != nil {
		return "", err
	}
	c.pages[key] = id
	c.logger.Info("created location page", logging.String(logging.FieldTitle, name), logging.String(logging.FieldPageID, id))
	return id, nil
}

// Len returns the number of cached locations.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pages)
}

// Reset forgets every cached location; the next lookup reloads the database.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.pages = nil
	c.titleKey = ""
}

func (c *Cache) loadLocked(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	schema, err := c.store.Schema(ctx, c.databaseID)
	if err != nil {
		return err
	}
	pages, err := c.store.QueryDatabase(ctx, c.databaseID, notion.Query{})
	if err != nil {
		return err
	}
	c.titleKey = schema.TitleKey
	c.pages = make(map[string]string, len(pages))
	for i := range pages {
		title := strings.TrimSpace(pages[i].Text(c.titleKey))
		if title == "" {
			continue
		}
		key := textutil.FoldKey(title)
		if _, dup := c.pages[key]; !dup {
			c.pages[key] = pages[i].ID
		}
	}
	c.loaded = true
	c.logger.Debug("locations loaded", logging.Int("count", len(c.pages)))
	return nil
}
