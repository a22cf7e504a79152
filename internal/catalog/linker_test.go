package catalog_test

import (
	"context"
	"errors"
	"testing"

	"notionbrainz/internal/catalog"
	"notionbrainz/internal/config"
	"notionbrainz/internal/notion"
)

type fakeStore struct {
	pages   []notion.Page
	created []notion.Properties
	icons   []string
	updated map[string]notion.Properties
	filters int
	scans   int
}

func (f *fakeStore) QueryDatabase(_ context.Context, _ string, q notion.Query) ([]notion.Page, error) {
	if q.Filter != nil {
		f.filters++
		want := q.Filter["title"].(map[string]any)["equals"]
		for _, p := range f.pages {
			if p.Text("Name") == want {
				return []notion.Page{p}, nil
			}
		}
		return nil, nil
	}
	f.scans++
	return f.pages, nil
}

func (f *fakeStore) CreatePage(_ context.Context, _ string, props notion.Properties, opts notion.PageOptions) (string, error) {
	f.created = append(f.created, props)
	f.icons = append(f.icons, opts.Icon)
	return "new-page", nil
}

func (f *fakeStore) UpdatePage(_ context.Context, id string, props notion.Properties, _ notion.PageOptions) error {
	if f.updated == nil {
		f.updated = map[string]notion.Properties{}
	}
	f.updated[id] = props
	return nil
}

type fakeEnricher struct {
	calls []string
	err   error
}

func (e *fakeEnricher) Enrich(_ context.Context, kind config.Kind, mbid string) (notion.Properties, error) {
	e.calls = append(e.calls, string(kind)+":"+mbid)
	if e.err != nil {
		return nil, e.err
	}
	return notion.Properties{"Sort": notion.RichText("Radiohead")}, nil
}

func page(id, title string) notion.Page {
	return notion.Page{ID: id, Properties: map[string]notion.Property{
		"Name": {Type: "title", Title: []notion.TextSegment{{PlainText: title}}},
	}}
}

func artistBinding() map[config.Kind]*catalog.Binding {
	schema := notion.NewSchema(&notion.Database{ID: "artists-db", Properties: map[string]notion.PropertyInfo{
		"Name": {ID: "title", Type: "title"},
		"MBID": {ID: "a%3Bb", Type: "rich_text"},
		"Sort": {ID: "srt", Type: "rich_text"},
	}})
	return map[config.Kind]*catalog.Binding{
		config.KindArtists: {
			Kind:       config.KindArtists,
			DatabaseID: "artists-db",
			Schema:     schema,
			Fields:     config.FieldMap{config.FieldTitle: "title", config.FieldMusicBrainzID: "a;b"},
		},
	}
}

func TestFindOrCreateExactTitle(t *testing.T) {
	store := &fakeStore{pages: []notion.Page{page("p1", "Radiohead")}}
	linker := catalog.NewLinker(store, artistBinding(), nil)

	id, err := linker.FindOrCreate(context.Background(), config.KindArtists, "Radiohead", "")
	if err != nil || id != "p1" {
		t.Fatalf("got %q, %v want p1", id, err)
	}
	if store.scans != 0 || len(store.created) != 0 {
		t.Fatalf("unexpected scan or create: %+v", store)
	}
}

func TestFindOrCreateCaseInsensitiveScan(t *testing.T) {
	store := &fakeStore{pages: []notion.Page{page("p1", "RADIOHEAD")}}
	linker := catalog.NewLinker(store, artistBinding(), nil)

	id, err := linker.FindOrCreate(context.Background(), config.KindArtists, "radiohead", "")
	if err != nil || id != "p1" {
		t.Fatalf("got %q, %v want p1", id, err)
	}
	if store.scans != 1 {
		t.Fatalf("got %d scans want 1", store.scans)
	}
}

func TestFindOrCreateCreatesAndEnriches(t *testing.T) {
	store := &fakeStore{}
	enricher := &fakeEnricher{}
	linker := catalog.NewLinker(store, artistBinding(), nil)
	linker.SetEnricher(enricher)
	ctx := context.Background()

	id, err := linker.FindOrCreate(ctx, config.KindArtists, "Radiohead", "a74b1b7f-71a5-4011-9441-d0b5e4122711")
	if err != nil || id != "new-page" {
		t.Fatalf("got %q, %v want new-page", id, err)
	}
	if len(store.created) != 1 {
		t.Fatalf("got %d creates want 1", len(store.created))
	}
	if _, ok := store.created[0]["MBID"]; !ok {
		t.Fatalf("expected mbid on created page, got %v", store.created[0])
	}
	if store.icons[0] != "🎤" {
		t.Fatalf("got icon %q want 🎤", store.icons[0])
	}
	if _, ok := store.updated["new-page"]["Sort"]; !ok {
		t.Fatalf("expected enrichment update, got %v", store.updated)
	}

	again, err := linker.FindOrCreate(ctx, config.KindArtists, "RADIOHEAD", "")
	if err != nil || again != id {
		t.Fatalf("got %q, %v want memoized %q", again, err, id)
	}
	if len(store.created) != 1 || len(enricher.calls) != 1 {
		t.Fatalf("expected memoized lookup, got creates=%d enrich=%d", len(store.created), len(enricher.calls))
	}
}

func TestFindOrCreateEnrichFailureKeepsPage(t *testing.T) {
	store := &fakeStore{}
	linker := catalog.NewLinker(store, artistBinding(), nil)
	linker.SetEnricher(&fakeEnricher{err: errors.New("boom")})

	id, err := linker.FindOrCreate(context.Background(), config.KindArtists, "Radiohead", "a74b1b7f-71a5-4011-9441-d0b5e4122711")
	if err != nil || id != "new-page" {
		t.Fatalf("got %q, %v want new-page", id, err)
	}
	if len(store.updated) != 0 {
		t.Fatalf("unexpected update %v", store.updated)
	}
}

func TestFindOrCreateUnconfiguredKind(t *testing.T) {
	linker := catalog.NewLinker(&fakeStore{}, artistBinding(), nil)
	id, err := linker.FindOrCreate(context.Background(), config.KindLabels, "Parlophone", "")
	if err != nil || id != "" {
		t.Fatalf("got %q, %v want empty", id, err)
	}
}

func TestBindingKeys(t *testing.T) {
	b := artistBinding()[config.KindArtists]
	if key, ok := b.Key(config.FieldMusicBrainzID); !ok || key != "MBID" {
		t.Fatalf("got %q, %v want MBID", key, ok)
	}
	if b.Has(config.FieldGenres) {
		t.Fatal("unconfigured field reported as present")
	}
	p := page("p1", "Radiohead")
	if title, ok := b.Title(&p); !ok || title != "Radiohead" {
		t.Fatalf("got %q, %v", title, ok)
	}
}

type fakeSchemas struct{}

func (fakeSchemas) Schema(_ context.Context, id string) (*notion.Schema, error) {
	return notion.NewSchema(&notion.Database{ID: id}), nil
}

func TestBindSkipsUnconfiguredDatabases(t *testing.T) {
	cfg := config.Default()
	cfg.Databases.Albums = "albums-db"
	bindings, err := catalog.Bind(context.Background(), fakeSchemas{}, &cfg)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if len(bindings) != 1 || bindings[config.KindAlbums] == nil {
		t.Fatalf("got %v want only albums", bindings)
	}
	if bindings[config.KindAlbums].Fields.ID(config.FieldTitle) != "title" {
		t.Fatalf("expected default title mapping")
	}
}
