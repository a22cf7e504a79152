package catalog

import (
	"context"

	"notionbrainz/internal/config"
	"notionbrainz/internal/notion"
)

// Icons per database kind.
var icons = map[config.Kind]string{
	config.KindArtists: "🎤",
	config.KindAlbums:  "💿",
	config.KindSongs:   "🎵",
	config.KindLabels:  "🏷️",
}

// Icon returns the page icon for kind.
func Icon(kind config.Kind) string {
	return icons[kind]
}

// Binding joins a database's configured field IDs with its live schema.
type Binding struct {
	Kind       config.Kind
	DatabaseID string
	Schema     *notion.Schema
	Fields     config.FieldMap
}

// Key returns the page-payload key backing a semantic field. The second
// result is false when the field is unconfigured or its ID is not in the
// schema.
func (b *Binding) Key(field string) (string, bool) {
	if b == nil || b.Schema == nil {
		return "", false
	}
	return b.Schema.Key(b.Fields.ID(field))
}

// Has reports whether a semantic field can be written.
func (b *Binding) Has(field string) bool {
	_, ok := b.Key(field)
	return ok
}

// Title returns the title of page using the configured title field.
func (b *Binding) Title(page *notion.Page) (string, bool) {
	key, ok := b.Key(config.FieldTitle)
	if !ok {
		return "", false
	}
	return page.Text(key), true
}

// StoredID returns the MusicBrainz ID stored on page, if any.
func (b *Binding) StoredID(page *notion.Page) string {
	key, ok := b.Key(config.FieldMusicBrainzID)
	if !ok {
		return ""
	}
	return page.Text(key)
}

// SchemaSource loads database schemas.
type SchemaSource interface {
	Schema(ctx context.Context, databaseID string) (*notion.Schema, error)
}

// Bind loads the schema for every configured database kind. Unconfigured
// kinds are absent from the result.
func Bind(ctx context.Context, src SchemaSource, cfg *config.Config) (map[config.Kind]*Binding, error) {
	bindings := make(map[config.Kind]*Binding, len(config.Kinds()))
	for _, kind := range config.Kinds() {
		id := cfg.DatabaseID(kind)
		if id == "" {
			continue
		}
		schema, err := src.Schema(ctx, id)
		if err != nil {
			return nil, err
		}
		bindings[kind] = &Binding{Kind: kind, DatabaseID: id, Schema: schema, Fields: cfg.Fields(kind)}
	}
	return bindings, nil
}
