package properties

import (
	"context"
	"slices"

	"notionbrainz/internal/config"
	"notionbrainz/internal/musicbrainz"
	"notionbrainz/internal/notion"
	"notionbrainz/internal/textutil"
)

const artistReleaseLimit = 100

var artistRules = []rule[musicbrainz.Artist]{
	{config.FieldTitle, func(_ context.Context, _ *Formatter, a *musicbrainz.Artist) (Result, error) {
		if a.Name == "" {
			return Omit(), nil
		}
		return Set(notion.Title(a.Name)), nil
	}},
	{config.FieldMusicBrainzID, func(_ context.Context, _ *Formatter, a *musicbrainz.Artist) (Result, error) {
		return text(a.ID), nil
	}},
	{config.FieldSortName, func(_ context.Context, _ *Formatter, a *musicbrainz.Artist) (Result, error) {
		return text(a.SortName), nil
	}},
	{config.FieldType, func(_ context.Context, _ *Formatter, a *musicbrainz.Artist) (Result, error) {
		return choice(a.Type), nil
	}},
	{config.FieldGender, func(_ context.Context, _ *Formatter, a *musicbrainz.Artist) (Result, error) {
		return choice(a.Gender), nil
	}},
	{config.FieldArea, func(ctx context.Context, f *Formatter, a *musicbrainz.Artist) (Result, error) {
		return f.place(ctx, a.Area)
	}},
	{config.FieldBornIn, func(ctx context.Context, f *Formatter, a *musicbrainz.Artist) (Result, error) {
		if f.deps.Places == nil {
			return Omit(), nil
		}
		if a.BeginArea == nil || a.BeginArea.Name == "" {
			return Clear(), nil
		}
		return f.place(ctx, a.BeginArea)
	}},
	{config.FieldIGLink, func(_ context.Context, _ *Formatter, a *musicbrainz.Artist) (Result, error) {
		return link(classifyURLs(a.Relations).instagram), nil
	}},
	{config.FieldWebsiteLink, func(_ context.Context, _ *Formatter, a *musicbrainz.Artist) (Result, error) {
		return link(classifyURLs(a.Relations).website), nil
	}},
	{config.FieldYouTubeLink, func(_ context.Context, _ *Formatter, a *musicbrainz.Artist) (Result, error) {
		return link(classifyURLs(a.Relations).youtube), nil
	}},
	{config.FieldBandcampLink, func(_ context.Context, _ *Formatter, a *musicbrainz.Artist) (Result, error) {
		return link(classifyURLs(a.Relations).bandcamp), nil
	}},
	{config.FieldStreamingLink, func(_ context.Context, _ *Formatter, a *musicbrainz.Artist) (Result, error) {
		return link(classifyURLs(a.Relations).spotify), nil
	}},
	{config.FieldCountry, func(_ context.Context, _ *Formatter, a *musicbrainz.Artist) (Result, error) {
		return choice(a.Area.Code()), nil
	}},
	{config.FieldBeginDate, func(ctx context.Context, f *Formatter, a *musicbrainz.Artist) (Result, error) {
		return f.activeYears(ctx, a)
	}},
	{config.FieldDisambiguation, func(_ context.Context, _ *Formatter, a *musicbrainz.Artist) (Result, error) {
		return text(a.Disambiguation), nil
	}},
	{config.FieldGenres, func(_ context.Context, _ *Formatter, a *musicbrainz.Artist) (Result, error) {
		return firstGenres(a.Genres), nil
	}},
	{config.FieldTags, func(_ context.Context, _ *Formatter, a *musicbrainz.Artist) (Result, error) {
		return tagsExcept(a.Tags, a.Genres), nil
	}},
	{config.FieldRating, func(_ context.Context, _ *Formatter, a *musicbrainz.Artist) (Result, error) {
		return rating(a.Rating), nil
	}},
	{config.FieldMusicBrainzURL, func(_ context.Context, _ *Formatter, a *musicbrainz.Artist) (Result, error) {
		return link(musicbrainz.EntityURL("artist", a.ID)), nil
	}},
	{config.FieldLastUpdated, func(_ context.Context, f *Formatter, _ *musicbrainz.Artist) (Result, error) {
		return f.lastUpdated(), nil
	}},
}

// Artist formats an artist page.
func (f *Formatter) Artist(ctx context.Context, a *musicbrainz.Artist) (PropertySet, error) {
	return apply(ctx, f, config.KindArtists, artistRules, a)
}

// activeYears spans the artist's earliest and latest release dates.
func (f *Formatter) activeYears(ctx context.Context, a *musicbrainz.Artist) (Result, error) {
	if a.ID == "" {
		return Omit(), nil
	}
	releases, err := f.deps.Source.SearchReleases(ctx, musicbrainz.ReleasesByArtist(a.ID), artistReleaseLimit)
	if err != nil {
		return Omit(), err
	}
	var dates []string
	for _, r := range releases {
		if day, ok := textutil.PeriodStart(r.Date); ok {
			dates = append(dates, day)
		}
	}
	if len(dates) == 0 {
		return Omit(), nil
	}
	return Set(notion.Date(slices.Min(dates), slices.Max(dates))), nil
}
