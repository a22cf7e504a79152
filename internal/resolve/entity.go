package resolve

import (
	"context"

	"notionbrainz/internal/logging"
	"notionbrainz/internal/musicbrainz"
	"notionbrainz/internal/textutil"
)

// ResolveArtist returns the artist for a local artist record.
func (r *Resolver) ResolveArtist(ctx context.Context, l Lookup) (*musicbrainz.Artist, error) {
	if artist, done, err := storedOutcome(ctx, r, "artist", l, r.source.Artist); done {
		return artist, err
	}
	results, err := r.source.SearchArtists(ctx, musicbrainz.Phrase(l.Title), entitySearchLimit)
	if err != nil {
		return nil, err
	}
	pick, err := r.pickNamed(ctx, "artist", l.Title, len(results),
		func(i int) string { return results[i].Name },
		func(i int) []musicbrainz.Alias { return results[i].Aliases })
	if err != nil {
		return nil, err
	}
	return r.source.Artist(ctx, results[pick].ID)
}

// ResolveLabel returns the label for a local label record.
func (r *Resolver) ResolveLabel(ctx context.Context, l Lookup) (*musicbrainz.Label, error) {
	if label, done, err := storedOutcome(ctx, r, "label", l, r.source.Label); done {
		return label, err
	}
	results, err := r.source.SearchLabels(ctx, musicbrainz.Phrase(l.Title), entitySearchLimit)
	if err != nil {
		return nil, err
	}
	pick, err := r.pickNamed(ctx, "label", l.Title, len(results),
		func(i int) string { return results[i].Name },
		func(i int) []musicbrainz.Alias { return results[i].Aliases })
	if err != nil {
		return nil, err
	}
	return r.source.Label(ctx, results[pick].ID)
}

// pickNamed returns the index of the first result whose canonical name
// matches title exactly. Aliases are only consulted when no canonical name
// matches; lenient mode then falls back to the first result.
func (r *Resolver) pickNamed(ctx context.Context, kind, title string, count int, name func(int) string, aliases func(int) []musicbrainz.Alias) (int, error) {
	if count == 0 {
		return 0, notFound(kind, title)
	}
	for i := 0; i < count; i++ {
		if textutil.TitlesMatch(title, name(i)) {
			return i, nil
		}
	}
	for i := 0; i < count; i++ {
		for _, alias := range aliases(i) {
			if textutil.TitlesMatch(title, alias.Name) {
				r.log(ctx).Info(kind+" matched by alias",
					logging.Args(append(logging.DecisionAttrs(kind+"_alias", name(i), "alias "+quote(alias.Name)),
						logging.String(logging.FieldTitle, title))...)...)
				return i, nil
			}
		}
	}
	closest := name(0)
	if r.opts.LenientArtistLabel {
		logging.WarnWithContext(r.log(ctx), "no exact "+kind+" match; accepting first result", "lenient_match",
			logging.String(logging.FieldTitle, title),
			logging.String("accepted", closest),
			logging.String(logging.FieldErrorHint, "disable matching.lenient_artist_label for strict matching"),
			logging.String(logging.FieldImpact, "record may be linked to a different "+kind),
		)
		return 0, nil
	}
	return 0, noExactMatch(kind, title, closest)
}
