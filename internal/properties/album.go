package properties

import (
	"context"
	"slices"

	"notionbrainz/internal/config"
	"notionbrainz/internal/musicbrainz"
	"notionbrainz/internal/notion"
)

var albumRules = []rule[musicbrainz.Release]{
	{config.FieldTitle, func(_ context.Context, _ *Formatter, r *musicbrainz.Release) (Result, error) {
		if r.Title == "" {
			return Omit(), nil
		}
		return Set(notion.Title(r.Title)), nil
	}},
	{config.FieldMusicBrainzID, func(_ context.Context, _ *Formatter, r *musicbrainz.Release) (Result, error) {
		return text(r.ID), nil
	}},
	{config.FieldReleaseDate, func(_ context.Context, _ *Formatter, r *musicbrainz.Release) (Result, error) {
		return date(r.Date), nil
	}},
	{config.FieldArtist, func(ctx context.Context, f *Formatter, r *musicbrainz.Release) (Result, error) {
		return f.linkCredits(ctx, r.ArtistCredit)
	}},
	{config.FieldCountry, func(_ context.Context, _ *Formatter, r *musicbrainz.Release) (Result, error) {
		return choice(r.CountryCode()), nil
	}},
	{config.FieldLabel, func(ctx context.Context, f *Formatter, r *musicbrainz.Release) (Result, error) {
		return f.releaseLabels(ctx, r)
	}},
	{config.FieldStatus, func(_ context.Context, _ *Formatter, r *musicbrainz.Release) (Result, error) {
		return choice(r.Status), nil
	}},
	{config.FieldPackaging, func(_ context.Context, _ *Formatter, r *musicbrainz.Release) (Result, error) {
		return choice(r.Packaging), nil
	}},
	{config.FieldBarcode, func(_ context.Context, _ *Formatter, r *musicbrainz.Release) (Result, error) {
		return text(r.Barcode), nil
	}},
	{config.FieldFormat, func(_ context.Context, _ *Formatter, r *musicbrainz.Release) (Result, error) {
		return options(mediaFormats(r.Media)), nil
	}},
	{config.FieldTrackCount, func(_ context.Context, _ *Formatter, r *musicbrainz.Release) (Result, error) {
		if n := trackCount(r.Media); n > 0 {
			return Set(notion.Number(float64(n))), nil
		}
		return Omit(), nil
	}},
	{config.FieldGenres, func(_ context.Context, _ *Formatter, r *musicbrainz.Release) (Result, error) {
		return firstGenres(groupGenres(r)), nil
	}},
	{config.FieldTags, func(_ context.Context, _ *Formatter, r *musicbrainz.Release) (Result, error) {
		return tagsExcept(r.Tags, groupGenres(r)), nil
	}},
	{config.FieldType, func(_ context.Context, _ *Formatter, r *musicbrainz.Release) (Result, error) {
		return choice(r.PrimaryType()), nil
	}},
	{config.FieldRating, func(_ context.Context, _ *Formatter, r *musicbrainz.Release) (Result, error) {
		if r.ReleaseGroup == nil {
			return Omit(), nil
		}
		return rating(r.ReleaseGroup.Rating), nil
	}},
	{config.FieldListen, func(ctx context.Context, f *Formatter, r *musicbrainz.Release) (Result, error) {
		if u := streamingLink(r.Relations); u != "" {
			return link(u), nil
		}
		if f.deps.Streaming == nil || r.Title == "" {
			return Omit(), nil
		}
		u, err := f.deps.Streaming.AlbumLink(ctx, r.Title, firstCreditName(r.ArtistCredit))
		return link(u), err
	}},
	{config.FieldCoverImage, func(ctx context.Context, f *Formatter, r *musicbrainz.Release) (Result, error) {
		cover, err := f.AlbumCover(ctx, r)
		return link(cover), err
	}},
	{config.FieldMusicBrainzURL, func(_ context.Context, _ *Formatter, r *musicbrainz.Release) (Result, error) {
		return link(musicbrainz.EntityURL("release", r.ID)), nil
	}},
	{config.FieldLastUpdated, func(_ context.Context, f *Formatter, _ *musicbrainz.Release) (Result, error) {
		return f.lastUpdated(), nil
	}},
}

// Album formats an album page from a release.
func (f *Formatter) Album(ctx context.Context, r *musicbrainz.Release) (PropertySet, error) {
	return apply(ctx, f, config.KindAlbums, albumRules, r)
}

func (f *Formatter) releaseLabels(ctx context.Context, r *musicbrainz.Release) (Result, error) {
	if f.deps.Linker == nil {
		return Omit(), nil
	}
	var ids []string
	for _, info := range r.LabelInfo {
		if info.Label == nil || info.Label.Name == "" {
			continue
		}
		if len(ids) == maxCredits {
			break
		}
		id, err := f.deps.Linker.FindOrCreate(ctx, config.KindLabels, info.Label.Name, info.Label.ID)
		if err != nil {
			return Omit(), err
		}
		if id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return relation(ids), nil
}

func groupGenres(r *musicbrainz.Release) []musicbrainz.Genre {
	if r == nil || r.ReleaseGroup == nil {
		return nil
	}
	return r.ReleaseGroup.Genres
}
