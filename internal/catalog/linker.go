package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"notionbrainz/internal/config"
	"notionbrainz/internal/logging"
	"notionbrainz/internal/notion"
	"notionbrainz/internal/services"
	"notionbrainz/internal/textutil"
)

// Store is the page-database surface the linker needs.
type Store interface {
	QueryDatabase(ctx context.Context, databaseID string, q notion.Query) ([]notion.Page, error)
	CreatePage(ctx context.Context, databaseID string, props notion.Properties, opts notion.PageOptions) (string, error)
	UpdatePage(ctx context.Context, pageID string, props notion.Properties, opts notion.PageOptions) error
}

// Enricher formats the full property set for a newly created page from its
// MusicBrainz entity.
type Enricher interface {
	Enrich(ctx context.Context, kind config.Kind, mbid string) (notion.Properties, error)
}

// Linker finds or creates pages that relation properties point to.
type Linker struct {
	store    Store
	bindings map[config.Kind]*Binding
	logger   *slog.Logger

	mu       sync.Mutex
	enricher Enricher
	known    map[string]string
}

// NewLinker constructs a Linker over the bound databases.
func NewLinker(store Store, bindings map[config.Kind]*Binding, logger *slog.Logger) *Linker {
	return &Linker{
		store:    store,
		bindings: bindings,
		logger:   logging.NewComponentLogger(logger, "catalog"),
		known:    make(map[string]string),
	}
}

// SetEnricher installs the formatter used to fill newly created pages.
func (l *Linker) SetEnricher(e Enricher) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enricher = e
}

// Binding returns the binding for kind, or nil when the database is not
// configured.
func (l *Linker) Binding(kind config.Kind) *Binding {
	return l.bindings[kind]
}

// Reset forgets previously found pages.
func (l *Linker) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.known = make(map[string]string)
}

// FindOrCreate returns the page titled name in the kind's database. The
// lookup tries an exact title filter, then a case-insensitive scan, then
// creates the page with the title, the MusicBrainz ID and the kind's icon,
// filling in the remaining properties when mbid is set. It returns "" when
// the database or its title field is not configured.
func (l *Linker) FindOrCreate(ctx context.Context, kind config.Kind, name, mbid string) (string, error) {
	name = strings.TrimSpace(name)
	binding := l.bindings[kind]
	if binding == nil || name == "" {
		return "", nil
	}
	titleKey, ok := binding.Key(config.FieldTitle)
	if !ok {
		return "", nil
	}
	memoKey := string(kind) + "\x00" + textutil.FoldKey(name)
	l.mu.Lock()
	if id, ok := l.known[memoKey]; ok {
		l.mu.Unlock()
		return id, nil
	}
	l.mu.Unlock()

	id, err := l.find(ctx, binding, titleKey, name)
	if err != nil {
		return "", err
	}
	if id == "" {
		id, err = l.create(ctx, binding, titleKey, name, mbid)
		if err != nil {
			return "", err
		}
	}
	l.mu.Lock()
	l.known[memoKey] = id
	l.mu.Unlock()
	return id, nil
}

func (l *Linker) find(ctx context.Context, b *Binding, titleKey, name string) (string, error) {
	pages, err := l.store.QueryDatabase(ctx, b.DatabaseID, notion.Query{Filter: notion.TitleEquals(titleKey, name), Limit: 1})
	if err != nil {
		return "", err
	}
	if len(pages) > 0 {
		return pages[0].ID, nil
	}
	pages, err = l.store.QueryDatabase(ctx, b.DatabaseID, notion.Query{})
	if err != nil {
		return "", err
	}
	for i := range pages {
		if textutil.FoldKey(pages[i].Text(titleKey)) == textutil.FoldKey(name) {
			return pages[i].ID, nil
		}
	}
	return "", nil
}

func (l *Linker) create(ctx context.Context, b *Binding, titleKey, name, mbid string) (string, error) {
	props := notion.Properties{titleKey: notion.Title(name)}
	if mbidKey, ok := b.Key(config.FieldMusicBrainzID); ok && mbid != "" {
		props[mbidKey] = notion.RichText(mbid)
	}
	id, err := l.store.CreatePage(ctx, b.DatabaseID, props, notion.PageOptions{Icon: Icon(b.Kind)})
	if err != nil {
		return "", err
	}
	log := l.logger.With(
		logging.String(logging.FieldDatabase, string(b.Kind)),
		logging.String(logging.FieldTitle, name),
		logging.String(logging.FieldPageID, id),
	)
	log.Info("created linked page")

	l.mu.Lock()
	enricher := l.enricher
	l.mu.Unlock()
	if enricher == nil || mbid == "" {
		return id, nil
	}
	full, err := enricher.Enrich(ctx, b.Kind, mbid)
	if err != nil {
		if services.IsFatal(err) {
			return "", err
		}
		logging.WarnWithContext(log, "linked page created without details", "enrich_failed",
			logging.String(logging.FieldMBID, mbid),
			logging.Error(err),
			logging.String(logging.FieldImpact, "page holds only its title and id until synced"),
		)
		return id, nil
	}
	if len(full) == 0 {
		return id, nil
	}
	if err := l.store.UpdatePage(ctx, id, full, notion.PageOptions{}); err != nil {
		if services.IsFatal(err) {
			return "", err
		}
		logging.WarnWithContext(log, "linked page details not written", "enrich_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "page holds only its title and id until synced"),
		)
	}
	return id, nil
}
