package properties

import (
	"context"

	"notionbrainz/internal/config"
	"notionbrainz/internal/musicbrainz"
	"notionbrainz/internal/notion"
)

// songInput carries a recording and, once needed, the release it is linked
// to.
type songInput struct {
	rec     *musicbrainz.Recording
	best    *musicbrainz.Release
	bestErr error
	picked  bool
}

func (f *Formatter) bestRelease(ctx context.Context, in *songInput) (*musicbrainz.Release, error) {
	if !in.picked {
		in.picked = true
		if f.deps.Releases != nil {
			in.best, in.bestErr = f.deps.Releases.BestRelease(ctx, in.rec)
		}
	}
	return in.best, in.bestErr
}

var songRules = []rule[songInput]{
	{config.FieldTitle, func(_ context.Context, _ *Formatter, in *songInput) (Result, error) {
		if in.rec.Title == "" {
			return Omit(), nil
		}
		return Set(notion.Title(in.rec.Title)), nil
	}},
	{config.FieldMusicBrainzID, func(_ context.Context, _ *Formatter, in *songInput) (Result, error) {
		return text(in.rec.ID), nil
	}},
	{config.FieldArtist, func(ctx context.Context, f *Formatter, in *songInput) (Result, error) {
		return f.linkCredits(ctx, in.rec.ArtistCredit)
	}},
	{config.FieldAlbum, func(ctx context.Context, f *Formatter, in *songInput) (Result, error) {
		best, err := f.bestRelease(ctx, in)
		if err != nil || best == nil || best.Title == "" || f.deps.Linker == nil {
			return Omit(), err
		}
		id, err := f.deps.Linker.FindOrCreate(ctx, config.KindAlbums, best.Title, best.ID)
		if err != nil {
			return Omit(), err
		}
		return relation([]string{id}), nil
	}},
	{config.FieldTrackNumber, func(ctx context.Context, f *Formatter, in *songInput) (Result, error) {
		best, err := f.bestRelease(ctx, in)
		if err != nil || best == nil {
			return Omit(), err
		}
		if pos, ok := best.TrackPosition(in.rec.ID); ok && pos > 0 {
			return Set(notion.Number(float64(pos))), nil
		}
		return Omit(), nil
	}},
	{config.FieldLength, func(_ context.Context, _ *Formatter, in *songInput) (Result, error) {
		if in.rec.Length <= 0 {
			return Omit(), nil
		}
		return Set(notion.Number(float64(in.rec.Length / 1000))), nil
	}},
	{config.FieldISRC, func(_ context.Context, _ *Formatter, in *songInput) (Result, error) {
		if len(in.rec.ISRCs) == 0 {
			return Omit(), nil
		}
		return text(in.rec.ISRCs[0]), nil
	}},
	{config.FieldDisambiguation, func(_ context.Context, _ *Formatter, in *songInput) (Result, error) {
		return text(in.rec.Disambiguation), nil
	}},
	{config.FieldGenres, func(ctx context.Context, f *Formatter, in *songInput) (Result, error) {
		best, err := f.bestRelease(ctx, in)
		if err != nil {
			return Omit(), err
		}
		return firstGenres(groupGenres(best)), nil
	}},
	{config.FieldTags, func(ctx context.Context, f *Formatter, in *songInput) (Result, error) {
		best, err := f.bestRelease(ctx, in)
		if err != nil {
			return Omit(), err
		}
		return tagsExcept(in.rec.Tags, groupGenres(best)), nil
	}},
	{config.FieldRating, func(_ context.Context, _ *Formatter, in *songInput) (Result, error) {
		return rating(in.rec.Rating), nil
	}},
	{config.FieldListen, func(ctx context.Context, f *Formatter, in *songInput) (Result, error) {
		if u := streamingLink(in.rec.Relations); u != "" {
			return link(u), nil
		}
		if f.deps.Streaming == nil || in.rec.Title == "" {
			return Omit(), nil
		}
		u, err := f.deps.Streaming.TrackLink(ctx, in.rec.Title, firstCreditName(in.rec.ArtistCredit))
		return link(u), err
	}},
	{config.FieldMusicBrainzURL, func(_ context.Context, _ *Formatter, in *songInput) (Result, error) {
		return link(musicbrainz.EntityURL("recording", in.rec.ID)), nil
	}},
	{config.FieldLastUpdated, func(_ context.Context, f *Formatter, _ *songInput) (Result, error) {
		return f.lastUpdated(), nil
	}},
}

// Song formats a song page from a recording. The linked release is chosen
// only when a configured field needs it.
func (f *Formatter) Song(ctx context.Context, rec *musicbrainz.Recording) (PropertySet, error) {
	return apply(ctx, f, config.KindSongs, songRules, &songInput{rec: rec})
}
