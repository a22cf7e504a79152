package properties

import (
	"context"

	"notionbrainz/internal/config"
	"notionbrainz/internal/musicbrainz"
	"notionbrainz/internal/notion"
)

var labelRules = []rule[musicbrainz.Label]{
	{config.FieldTitle, func(_ context.Context, _ *Formatter, l *musicbrainz.Label) (Result, error) {
		if l.Name == "" {
			return Omit(), nil
		}
		return Set(notion.Title(l.Name)), nil
	}},
	{config.FieldMusicBrainzID, func(_ context.Context, _ *Formatter, l *musicbrainz.Label) (Result, error) {
		return text(l.ID), nil
	}},
	{config.FieldType, func(_ context.Context, _ *Formatter, l *musicbrainz.Label) (Result, error) {
		return choice(l.Type), nil
	}},
	{config.FieldCountry, func(_ context.Context, _ *Formatter, l *musicbrainz.Label) (Result, error) {
		return choice(l.Area.Code()), nil
	}},
	{config.FieldBeginDate, func(_ context.Context, _ *Formatter, l *musicbrainz.Label) (Result, error) {
		return date(l.LifeSpan.Begin), nil
	}},
	{config.FieldEndDate, func(_ context.Context, _ *Formatter, l *musicbrainz.Label) (Result, error) {
		return date(l.LifeSpan.End), nil
	}},
	{config.FieldFounded, func(_ context.Context, _ *Formatter, l *musicbrainz.Label) (Result, error) {
		return date(l.LifeSpan.Begin), nil
	}},
	{config.FieldDisambiguation, func(_ context.Context, _ *Formatter, l *musicbrainz.Label) (Result, error) {
		return text(l.Disambiguation), nil
	}},
	{config.FieldGenres, func(_ context.Context, _ *Formatter, l *musicbrainz.Label) (Result, error) {
		return firstGenres(l.Genres), nil
	}},
	{config.FieldTags, func(_ context.Context, _ *Formatter, l *musicbrainz.Label) (Result, error) {
		return tagsExcept(l.Tags, l.Genres), nil
	}},
	{config.FieldRating, func(_ context.Context, _ *Formatter, l *musicbrainz.Label) (Result, error) {
		return rating(l.Rating), nil
	}},
	{config.FieldMusicBrainzURL, func(_ context.Context, _ *Formatter, l *musicbrainz.Label) (Result, error) {
		return link(musicbrainz.EntityURL("label", l.ID)), nil
	}},
	{config.FieldOfficialWebsite, func(_ context.Context, _ *Formatter, l *musicbrainz.Label) (Result, error) {
		return link(classifyURLs(l.Relations).website), nil
	}},
	{config.FieldIG, func(_ context.Context, _ *Formatter, l *musicbrainz.Label) (Result, error) {
		return link(classifyURLs(l.Relations).instagram), nil
	}},
	{config.FieldBandcamp, func(_ context.Context, _ *Formatter, l *musicbrainz.Label) (Result, error) {
		return link(classifyURLs(l.Relations).bandcamp), nil
	}},
	{config.FieldArea, func(ctx context.Context, f *Formatter, l *musicbrainz.Label) (Result, error) {
		return f.place(ctx, l.Area)
	}},
	{config.FieldLastUpdated, func(_ context.Context, f *Formatter, _ *musicbrainz.Label) (Result, error) {
		return f.lastUpdated(), nil
	}},
}

// Label formats a label page.
func (f *Formatter) Label(ctx context.Context, l *musicbrainz.Label) (PropertySet, error) {
	return apply(ctx, f, config.KindLabels, labelRules, l)
}
