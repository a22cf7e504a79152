package properties

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"notionbrainz/internal/catalog"
	"notionbrainz/internal/config"
	"notionbrainz/internal/logging"
	"notionbrainz/internal/musicbrainz"
	"notionbrainz/internal/notion"
	"notionbrainz/internal/services"
)

// Source supplies MusicBrainz data beyond the entity being formatted.
type Source interface {
	SearchReleases(ctx context.Context, query string, limit int) ([]musicbrainz.Release, error)
	CoverArt(ctx context.Context, releaseID string) (string, error)
	Artist(ctx context.Context, id string) (*musicbrainz.Artist, error)
	Release(ctx context.Context, id string) (*musicbrainz.Release, error)
	Recording(ctx context.Context, id string) (*musicbrainz.Recording, error)
	Label(ctx context.Context, id string) (*musicbrainz.Label, error)
}

// ReleasePicker chooses the release a song is linked to.
type ReleasePicker interface {
	BestRelease(ctx context.Context, recording *musicbrainz.Recording) (*musicbrainz.Release, error)
}

// Linker finds or creates linked artist, album and label pages.
type Linker interface {
	FindOrCreate(ctx context.Context, kind config.Kind, name, mbid string) (string, error)
}

// Places finds or creates location pages.
type Places interface {
	FindOrCreate(ctx context.Context, name string) (string, error)
}

// Streaming looks up fallback art and links in the streaming catalog.
type Streaming interface {
	AlbumArt(ctx context.Context, title, artist string) (string, error)
	AlbumLink(ctx context.Context, title, artist string) (string, error)
	TrackLink(ctx context.Context, title, artist string) (string, error)
	ArtistImage(ctx context.Context, name string) (string, error)
}

// Deps are the collaborators a Formatter calls.
type Deps struct {
	Source    Source
	Releases  ReleasePicker
	Linker    Linker
	Places    Places
	Streaming Streaming
	Now       func() time.Time
	Logger    *slog.Logger
}

// Formatter builds property sets for the bound databases.
type Formatter struct {
	bindings map[config.Kind]*catalog.Binding
	deps     Deps
	logger   *slog.Logger

	mu     sync.Mutex
	covers map[string]string
}

// New constructs a Formatter.
func New(bindings map[config.Kind]*catalog.Binding, deps Deps) *Formatter {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Formatter{
		bindings: bindings,
		deps:     deps,
		logger:   logging.NewComponentLogger(deps.Logger, "properties"),
		covers:   make(map[string]string),
	}
}

// rule fills one semantic field from an input of type T.
type rule[T any] struct {
	field string
	build func(ctx context.Context, f *Formatter, in *T) (Result, error)
}

func apply[T any](ctx context.Context, f *Formatter, kind config.Kind, rules []rule[T], in *T) (PropertySet, error) {
	binding := f.bindings[kind]
	set := PropertySet{}
	if binding == nil {
		return set, nil
	}
	for _, r := range rules {
		key, ok := binding.Key(r.field)
		if !ok {
			continue
		}
		res, err := r.build(ctx, f, in)
		if err != nil {
			if services.IsFatal(err) {
				return nil, err
			}
			logging.WarnWithContext(logging.WithContext(ctx, f.logger), "property skipped", "property_failed",
				logging.String("field", r.field),
				logging.Error(err),
			)
			continue
		}
		switch res.state {
		case assigned:
			set[key] = res.value
		case cleared:
			info, _ := binding.Schema.Info(key)
			set[key] = notion.Empty(info.Type)
		}
	}
	return set, nil
}

func (f *Formatter) lastUpdated() Result {
	return Set(notion.Date(f.deps.Now().Format(time.RFC3339), ""))
}

func (f *Formatter) place(ctx context.Context, area *musicbrainz.Area) (Result, error) {
	if area == nil || area.Name == "" || f.deps.Places == nil {
		return Omit(), nil
	}
	id, err := f.deps.Places.FindOrCreate(ctx, area.Name)
	if err != nil {
		return Omit(), err
	}
	return relation([]string{id}), nil
}

func (f *Formatter) linkCredits(ctx context.Context, credits []musicbrainz.ArtistCredit) (Result, error) {
	if f.deps.Linker == nil {
		return Omit(), nil
	}
	var ids []string
	for _, credit := range credits[:min(maxCredits, len(credits))] {
		id, err := f.deps.Linker.FindOrCreate(ctx, config.KindArtists, credit.DisplayName(), credit.Artist.ID)
		if err != nil {
			return Omit(), err
		}
		if id != "" {
			ids = append(ids, id)
		}
	}
	return relation(ids), nil
}

// AlbumCover returns the release's front cover from the Cover Art Archive,
// falling back to the streaming catalog's album art. Results are memoized
// per release.
func (f *Formatter) AlbumCover(ctx context.Context, r *musicbrainz.Release) (string, error) {
	f.mu.Lock()
	cover, ok := f.covers[r.ID]
	f.mu.Unlock()
	if ok {
		return cover, nil
	}
	cover, err := f.deps.Source.CoverArt(ctx, r.ID)
	if err != nil {
		return "", err
	}
	if cover == "" && f.deps.Streaming != nil && r.Title != "" {
		cover, err = f.deps.Streaming.AlbumArt(ctx, r.Title, firstCreditName(r.ArtistCredit))
		if err != nil {
			return "", err
		}
	}
	f.mu.Lock()
	f.covers[r.ID] = cover
	f.mu.Unlock()
	return cover, nil
}

// ArtistCover returns the artist's streaming-catalog image.
func (f *Formatter) ArtistCover(ctx context.Context, a *musicbrainz.Artist) (string, error) {
	if f.deps.Streaming == nil || a.Name == "" {
		return "", nil
	}
	return f.deps.Streaming.ArtistImage(ctx, a.Name)
}

// Enrich formats the full property set for a page of kind identified by
// mbid. It satisfies catalog.Enricher.
func (f *Formatter) Enrich(ctx context.Context, kind config.Kind, mbid string) (notion.Properties, error) {
	switch kind {
	case config.KindArtists:
		a, err := f.deps.Source.Artist(ctx, mbid)
		if err != nil {
			return nil, err
		}
		return f.Artist(ctx, a)
	case config.KindAlbums:
		r, err := f.deps.Source.Release(ctx, mbid)
		if err != nil {
			return nil, err
		}
		return f.Album(ctx, r)
	case config.KindSongs:
		r, err := f.deps.Source.Recording(ctx, mbid)
		if err != nil {
			return nil, err
		}
		return f.Song(ctx, r)
	case config.KindLabels:
		l, err := f.deps.Source.Label(ctx, mbid)
		if err != nil {
			return nil, err
		}
		return f.Label(ctx, l)
	default:
		return nil, nil
	}
}

// RelationKeys returns the payload keys of kind's merged relation fields.
func (f *Formatter) RelationKeys(kind config.Kind) []string {
	var fields []string
	switch kind {
	case config.KindAlbums:
		fields = []string{config.FieldArtist, config.FieldSongs, config.FieldLabel}
	case config.KindSongs:
		fields = []string{config.FieldArtist, config.FieldAlbum}
	}
	var keys []string
	for _, field := range fields {
		if key, ok := f.bindings[kind].Key(field); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// MergeRelations unions each relation in set under keys with the IDs the
// page already stores. A key absent from set is left untouched on the page;
// an explicitly emptied relation stays empty. A stored relation that is
// still truncated (has_more) is dropped from set, since writing the union
// would remove the references the page payload did not list.
func MergeRelations(page *notion.Page, set PropertySet, keys []string) PropertySet {
	for _, key := range keys {
		value, ok := set[key]
		if !ok || !value.IsRelation() || value.IsEmpty() {
			continue
		}
		if prop, ok := page.Property(key); ok && prop.HasMore {
			delete(set, key)
			continue
		}
		stored := page.RelationIDs(key)
		if len(stored) == 0 {
			continue
		}
		set[key] = notion.Relation(append(stored, value.RelationIDs()...))
	}
	return set
}
