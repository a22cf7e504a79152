package properties_test

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"notionbrainz/internal/catalog"
	"notionbrainz/internal/config"
	"notionbrainz/internal/musicbrainz"
	"notionbrainz/internal/notion"
	"notionbrainz/internal/properties"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// bind maps every listed field to a property keyed by the field name.
func bind(kind config.Kind, types map[string]string) map[config.Kind]*catalog.Binding {
	db := &notion.Database{ID: string(kind), Properties: map[string]notion.PropertyInfo{}}
	fields := config.FieldMap{}
	for field, typ := range types {
		db.Properties[field] = notion.PropertyInfo{ID: "id-" + field, Name: field, Type: typ}
		fields[field] = "id-" + field
	}
	return map[config.Kind]*catalog.Binding{
		kind: {Kind: kind, DatabaseID: string(kind), Schema: notion.NewSchema(db), Fields: fields},
	}
}

type fakeSource struct {
	releases []musicbrainz.Release
	covers   map[string]string
	searches int
}

func (f *fakeSource) SearchReleases(context.Context, string, int) ([]musicbrainz.Release, error) {
	f.searches++
	return f.releases, nil
}

func (f *fakeSource) CoverArt(_ context.Context, id string) (string, error) {
	return f.covers[id], nil
}

func (f *fakeSource) Artist(context.Context, string) (*musicbrainz.Artist, error) {
	return &musicbrainz.Artist{ID: "a1", Name: "Radiohead"}, nil
}

func (f *fakeSource) Release(context.Context, string) (*musicbrainz.Release, error) {
	return &musicbrainz.Release{ID: "r1", Title: "OK Computer"}, nil
}

func (f *fakeSource) Recording(context.Context, string) (*musicbrainz.Recording, error) {
	return &musicbrainz.Recording{ID: "rec1", Title: "Creep"}, nil
}

func (f *fakeSource) Label(context.Context, string) (*musicbrainz.Label, error) {
	return &musicbrainz.Label{ID: "l1", Name: "Parlophone"}, nil
}

type fakeLinker struct{ calls []string }

func (f *fakeLinker) FindOrCreate(_ context.Context, kind config.Kind, name, _ string) (string, error) {
	f.calls = append(f.calls, string(kind)+":"+name)
	return "page-" + name, nil
}

type fakePlaces struct{ names []string }

func (f *fakePlaces) FindOrCreate(_ context.Context, name string) (string, error) {
	f.names = append(f.names, name)
	return "loc-" + name, nil
}

type fakeStreaming struct{ art, albumLink, trackLink, image string }

func (f fakeStreaming) AlbumArt(context.Context, string, string) (string, error)  { return f.art, nil }
func (f fakeStreaming) AlbumLink(context.Context, string, string) (string, error) { return f.albumLink, nil }
func (f fakeStreaming) TrackLink(context.Context, string, string) (string, error) { return f.trackLink, nil }
func (f fakeStreaming) ArtistImage(context.Context, string) (string, error)       { return f.image, nil }

type fakePicker struct {
	release *musicbrainz.Release
	calls   int
}

func (f *fakePicker) BestRelease(context.Context, *musicbrainz.Recording) (*musicbrainz.Release, error) {
	f.calls++
	return f.release, nil
}

func jsonOf(t *testing.T, v notion.Value) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestArtistProperties(t *testing.T) {
	bindings := bind(config.KindArtists, map[string]string{
		config.FieldTitle:       "title",
		config.FieldBornIn:      "relation",
		config.FieldArea:        "relation",
		config.FieldCountry:     "select",
		config.FieldYouTubeLink: "url",
		config.FieldIGLink:      "url",
		config.FieldGenres:      "multi_select",
		config.FieldTags:        "multi_select",
		config.FieldBeginDate:   "date",
		config.FieldLastUpdated: "date",
	})
	src := &fakeSource{releases: []musicbrainz.Release{{Date: "1993"}, {Date: "2016-05-08"}, {Date: ""}, {Date: "1997-06"}}}
	places := &fakePlaces{}
	f := properties.New(bindings, properties.Deps{Source: src, Places: places, Now: func() time.Time { return fixedNow }})

	artist := &musicbrainz.Artist{
		ID:   "a74b1b7f-71a5-4011-9441-d0b5e4122711",
		Name: "Radiohead",
		Area: &musicbrainz.Area{Name: "United Kingdom", ISOCodes: []string{"GB"}},
		Relations: []musicbrainz.Relation{
			{Type: "youtube", URL: &musicbrainz.URL{Resource: "https://music.youtube.com/channel/x"}},
			{Type: "youtube", URL: &musicbrainz.URL{Resource: "https://www.youtube.com/user/radiohead"}},
			{Type: "social network", URL: &musicbrainz.URL{Resource: "https://www.instagram.com/radiohead/"}},
		},
		Genres: []musicbrainz.Genre{{Name: "alternative rock"}, {Name: "art rock"}},
		Tags:   []musicbrainz.Tag{{Name: "art rock"}, {Name: "british"}},
	}
	set, err := f.Artist(context.Background(), artist)
	if err != nil {
		t.Fatalf("Artist: %v", err)
	}

	checks := map[string]string{
		config.FieldTitle:       `{"title":[{"text":{"content":"Radiohead"}}]}`,
		config.FieldBornIn:      `{"relation":[]}`,
		config.FieldArea:        `{"relation":[{"id":"loc-United Kingdom"}]}`,
		config.FieldCountry:     `{"select":{"name":"GB"}}`,
		config.FieldYouTubeLink: `{"url":"https://www.youtube.com/user/radiohead"}`,
		config.FieldIGLink:      `{"url":"https://www.instagram.com/radiohead/"}`,
		config.FieldGenres:      `{"multi_select":[{"name":"alternative rock"},{"name":"art rock"}]}`,
		config.FieldTags:        `{"multi_select":[{"name":"british"}]}`,
		config.FieldBeginDate:   `{"date":{"start":"1993-01-01","end":"2016-05-08"}}`,
		config.FieldLastUpdated: `{"date":{"start":"2026-03-01T12:00:00Z"}}`,
	}
	for field, want := range checks {
		v, ok := set[field]
		if !ok {
			t.Fatalf("missing %s", field)
		}
		if got := jsonOf(t, v); got != want {
			t.Fatalf("%s: got %s want %s", field, got, want)
		}
	}
}

func TestUnconfiguredFieldsSkipRemoteCalls(t *testing.T) {
	bindings := bind(config.KindArtists, map[string]string{config.FieldTitle: "title"})
	src := &fakeSource{}
	f := properties.New(bindings, properties.Deps{Source: src})
	set, err := f.Artist(context.Background(), &musicbrainz.Artist{ID: "x", Name: "Radiohead"})
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 1 {
		t.Fatalf("got %d properties want 1", len(set))
	}
	if src.searches != 0 {
		t.Fatalf("got %d searches want 0", src.searches)
	}
}

func TestAlbumProperties(t *testing.T) {
	bindings := bind(config.KindAlbums, map[string]string{
		config.FieldReleaseDate: "date",
		config.FieldArtist:      "relation",
		config.FieldLabel:       "relation",
		config.FieldFormat:      "multi_select",
		config.FieldTrackCount:  "number",
		config.FieldType:        "select",
		config.FieldListen:      "url",
		config.FieldCoverImage:  "url",
	})
	linker := &fakeLinker{}
	src := &fakeSource{covers: map[string]string{}}
	f := properties.New(bindings, properties.Deps{
		Source:    src,
		Linker:    linker,
		Streaming: fakeStreaming{art: "https://i.scdn.co/cover.jpg", albumLink: "https://open.spotify.com/album/x"},
	})
	release := &musicbrainz.Release{
		ID:           "r1",
		Title:        "OK Computer",
		Date:         "1997-05",
		ArtistCredit: []musicbrainz.ArtistCredit{{Artist: musicbrainz.ArtistRef{ID: "a1", Name: "Radiohead"}}},
		LabelInfo: []musicbrainz.LabelInfo{
			{Label: &musicbrainz.LabelRef{ID: "l1", Name: "Parlophone"}},
			{Label: &musicbrainz.LabelRef{ID: "l1", Name: "Parlophone"}},
		},
		Media:        []musicbrainz.Medium{{Format: "CD", TrackCount: 12}, {Format: "CD", TrackCount: 2}},
		ReleaseGroup: &musicbrainz.ReleaseGroup{Type: "Album"},
	}
	set, err := f.Album(context.Background(), release)
	if err != nil {
		t.Fatalf("Album: %v", err)
	}
	checks := map[string]string{
		config.FieldReleaseDate: `{"date":{"start":"1997-05-01"}}`,
		config.FieldArtist:      `{"relation":[{"id":"page-Radiohead"}]}`,
		config.FieldLabel:       `{"relation":[{"id":"page-Parlophone"}]}`,
		config.FieldFormat:      `{"multi_select":[{"name":"CD"}]}`,
		config.FieldTrackCount:  `{"number":14}`,
		config.FieldType:        `{"select":{"name":"Album"}}`,
		config.FieldListen:      `{"url":"https://open.spotify.com/album/x"}`,
		config.FieldCoverImage:  `{"url":"https://i.scdn.co/cover.jpg"}`,
	}
	for field, want := range checks {
		if got := jsonOf(t, set[field]); got != want {
			t.Fatalf("%s: got %s want %s", field, got, want)
		}
	}
}

func TestSongProperties(t *testing.T) {
	bindings := bind(config.KindSongs, map[string]string{
		config.FieldAlbum:       "relation",
		config.FieldTrackNumber: "number",
		config.FieldLength:      "number",
		config.FieldISRC:        "rich_text",
		config.FieldGenres:      "multi_select",
		config.FieldListen:      "url",
	})
	picker := &fakePicker{release: &musicbrainz.Release{
		ID:           "r1",
		Title:        "Pablo Honey",
		Media:        []musicbrainz.Medium{{Tracks: []musicbrainz.Track{{Position: 1, Recording: musicbrainz.TrackRecording{ID: "x"}}, {Position: 2, Recording: musicbrainz.TrackRecording{ID: "rec1"}}}}},
		ReleaseGroup: &musicbrainz.ReleaseGroup{Genres: []musicbrainz.Genre{{Name: "alternative rock"}}},
	}}
	linker := &fakeLinker{}
	f := properties.New(bindings, properties.Deps{Source: &fakeSource{}, Releases: picker, Linker: linker, Streaming: fakeStreaming{}})
	rec := &musicbrainz.Recording{
		ID:     "rec1",
		Title:  "Creep",
		Length: 238640,
		ISRCs:  []string{"GBAYE9200070", "GBAYE9300106"},
		Relations: []musicbrainz.Relation{
			{Type: "free streaming", URL: &musicbrainz.URL{Resource: "https://open.spotify.com/track/abc"}},
		},
	}
	set, err := f.Song(context.Background(), rec)
	if err != nil {
		t.Fatalf("Song: %v", err)
	}
	checks := map[string]string{
		config.FieldAlbum:       `{"relation":[{"id":"page-Pablo Honey"}]}`,
		config.FieldTrackNumber: `{"number":2}`,
		config.FieldLength:      `{"number":238}`,
		config.FieldISRC:        `{"rich_text":[{"text":{"content":"GBAYE9200070"}}]}`,
		config.FieldGenres:      `{"multi_select":[{"name":"alternative rock"}]}`,
		config.FieldListen:      `{"url":"https://open.spotify.com/track/abc"}`,
	}
	for field, want := range checks {
		if got := jsonOf(t, set[field]); got != want {
			t.Fatalf("%s: got %s want %s", field, got, want)
		}
	}
	if picker.calls != 1 {
		t.Fatalf("best release picked %d times want 1", picker.calls)
	}
}

func TestLabelProperties(t *testing.T) {
	bindings := bind(config.KindLabels, map[string]string{
		config.FieldOfficialWebsite: "url",
		config.FieldFounded:         "date",
		config.FieldEndDate:         "date",
		config.FieldMusicBrainzURL:  "url",
	})
	f := properties.New(bindings, properties.Deps{Source: &fakeSource{}})
	set, err := f.Label(context.Background(), &musicbrainz.Label{
		ID:       "df7d1c7f-ef95-425f-8eef-445b3d7bcbd9",
		LifeSpan: musicbrainz.LifeSpan{Begin: "1896"},
		Relations: []musicbrainz.Relation{
			{Type: "official site", URL: &musicbrainz.URL{Resource: "https://www.parlophone.co.uk/"}},
		},
	})
	if err != nil {
		t.Fatalf("Label: %v", err)
	}
	if _, ok := set[config.FieldEndDate]; ok {
		t.Fatal("end date should be omitted when absent")
	}
	checks := map[string]string{
		config.FieldOfficialWebsite: `{"url":"https://www.parlophone.co.uk/"}`,
		config.FieldFounded:         `{"date":{"start":"1896-01-01"}}`,
		config.FieldMusicBrainzURL:  `{"url":"https://musicbrainz.org/label/df7d1c7f-ef95-425f-8eef-445b3d7bcbd9"}`,
	}
	for field, want := range checks {
		if got := jsonOf(t, set[field]); got != want {
			t.Fatalf("%s: got %s want %s", field, got, want)
		}
	}
}

func TestMergeRelations(t *testing.T) {
	page := &notion.Page{Properties: map[string]notion.Property{
		"Artist": {Type: "relation", Relation: []notion.Ref{{ID: "A"}, {ID: "B"}}},
		"Songs":  {Type: "relation", Relation: []notion.Ref{{ID: "A"}, {ID: "B"}}},
	}}
	set := properties.PropertySet{"Artist": notion.Relation([]string{"B", "C"})}
	merged := properties.MergeRelations(page, set, []string{"Artist", "Songs"})

	if got := merged["Artist"].RelationIDs(); len(got) != 3 || got[0] != "A" || got[1] != "B" || got[2] != "C" {
		t.Fatalf("got %v want [A B C]", got)
	}
	if _, ok := merged["Songs"]; ok {
		t.Fatal("absent key must stay untouched")
	}
}

func TestMergeRelationsSkipsTruncatedRelation(t *testing.T) {
	visible := make([]notion.Ref, 25)
	for i := range visible {
		visible[i] = notion.Ref{ID: "artist-" + strconv.Itoa(i)}
	}
	page := &notion.Page{Properties: map[string]notion.Property{
		"Artist": {Type: "relation", Relation: visible, HasMore: true},
		"Label":  {Type: "relation", Relation: []notion.Ref{{ID: "L1"}}},
	}}
	set := properties.PropertySet{
		"Artist": notion.Relation([]string{"new"}),
		"Label":  notion.Relation([]string{"L2"}),
	}
	merged := properties.MergeRelations(page, set, []string{"Artist", "Label"})

	if _, ok := merged["Artist"]; ok {
		t.Fatalf("truncated relation must not be written, got %v", merged["Artist"].RelationIDs())
	}
	if got := merged["Label"].RelationIDs(); len(got) != 2 {
		t.Fatalf("got %v want [L1 L2]", got)
	}
}

func TestMergeRelationsKeepsExplicitClear(t *testing.T) {
	page := &notion.Page{Properties: map[string]notion.Property{
		"Album": {Type: "relation", Relation: []notion.Ref{{ID: "A"}}},
	}}
	set := properties.PropertySet{"Album": notion.Relation(nil)}
	merged := properties.MergeRelations(page, set, []string{"Album"})
	if ids := merged["Album"].RelationIDs(); len(ids) != 0 {
		t.Fatalf("got %v want cleared", ids)
	}
}

func TestRelationKeys(t *testing.T) {
	bindings := bind(config.KindSongs, map[string]string{config.FieldArtist: "relation", config.FieldTitle: "title"})
	f := properties.New(bindings, properties.Deps{})
	keys := f.RelationKeys(config.KindSongs)
	if len(keys) != 1 || keys[0] != config.FieldArtist {
		t.Fatalf("got %v want [artist]", keys)
	}
	if len(f.RelationKeys(config.KindArtists)) != 0 {
		t.Fatal("artists have no merged relations")
	}
}
