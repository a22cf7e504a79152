package resolve

import (
	"context"
	"errors"

	"notionbrainz/internal/logging"
	"notionbrainz/internal/musicbrainz"
	"notionbrainz/internal/scoring"
	"notionbrainz/internal/services"
	"notionbrainz/internal/textutil"
)

// AlbumRequest describes a local album record and its linked records.
type AlbumRequest struct {
	Lookup
	// ArtistID and ArtistName come from the first linked artist page.
	ArtistID   string
	ArtistName string
	// SongIDs and SongTitles come from the linked song pages. A release
	// must contain all of them to be preferred.
	SongIDs    []string
	SongTitles []string
}

func (q AlbumRequest) requirement() scoring.Requirement {
	return scoring.Requirement{RecordingIDs: q.SongIDs, Titles: q.SongTitles}
}

// ResolveAlbum returns the release for a local album record.
func (r *Resolver) ResolveAlbum(ctx context.Context, req AlbumRequest) (*musicbrainz.Release, error) {
	required := req.requirement()
	if release, done, err := r.storedRelease(ctx, req, required); done {
		return release, err
	}

	candidates, err := r.linkedReleases(ctx, req)
	if err != nil {
		return nil, err
	}
	matching := exactReleases(candidates, req.Title)
	if len(matching) == 0 {
		fallback, err := r.source.SearchReleases(ctx, musicbrainz.ReleaseQuery(req.Title, req.ArtistName), fallbackReleaseLimit)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, fallback...)
		matching = exactReleases(fallback, req.Title)
	}
	if len(matching) == 0 {
		if len(candidates) == 0 {
			return nil, notFound("album", req.Title)
		}
		return nil, noExactMatch("album", req.Title, candidates[0].Title)
	}

	ranked, err := r.rankReleases(ctx, matching, required)
	if err != nil {
		return nil, err
	}
	if !required.Empty() {
		containing := make([]scoring.Candidate, 0, len(ranked))
		for _, c := range ranked {
			if c.HasRequired {
				containing = append(containing, c)
			}
		}
		switch {
		case len(containing) > 0:
			ranked = containing
		case r.opts.RequireSongContainment:
			return nil, services.Wrap(services.ErrNoExactMatch, resolverComponentName, "resolve album",
				"no release of "+quote(req.Title)+" contains every linked song", nil)
		default:
			logging.WarnWithContext(r.log(ctx), "no release contains every linked song; using best title match", "album_song_mismatch",
				logging.String(logging.FieldTitle, req.Title),
				logging.Int("linked_songs", len(req.SongIDs)+len(req.SongTitles)),
				logging.String(logging.FieldErrorHint, "check the songs linked to this album"),
			)
		}
	}
	best := ranked[0].Release
	r.log(ctx).Info("album resolved",
		logging.Args(append(logging.DecisionAttrs("album_release", best.ID, "highest ranked exact title match"),
			logging.String(logging.FieldTitle, req.Title),
			logging.Int("score", ranked[0].Score.Points),
			logging.Int("candidates", len(matching)))...)...)
	return &best, nil
}

// storedRelease re-checks a stored album ID against the linked songs.
func (r *Resolver) storedRelease(ctx context.Context, req AlbumRequest, required scoring.Requirement) (*musicbrainz.Release, bool, error) {
	id := req.storedID()
	if id == "" {
		return nil, false, nil
	}
	release, err := r.source.Release(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			logging.WarnWithContext(r.log(ctx), "stored album id no longer resolves; searching by title", "stale_id",
				logging.String(logging.FieldMBID, id),
				logging.String(logging.FieldImpact, "record will be re-resolved by title"),
			)
			return nil, false, nil
		}
		return nil, true, err
	}
	if !required.SatisfiedBy(release) {
		logging.WarnWithContext(r.log(ctx), "stored album is missing linked songs; searching for a new match", "stale_id",
			logging.String(logging.FieldMBID, id),
			logging.String(logging.FieldImpact, "record will be re-resolved by title"),
		)
		return nil, false, nil
	}
	if !req.Force {
		return nil, true, ErrAlreadyLinked
	}
	return release, true, nil
}

// linkedReleases sources candidates from the strongest available link: the
// artist ID, then the first song ID, then the first song title.
func (r *Resolver) linkedReleases(ctx context.Context, req AlbumRequest) ([]musicbrainz.Release, error) {
	var (
		releases []musicbrainz.Release
		err      error
	)
	switch {
	case musicbrainz.ValidID(req.ArtistID):
		releases, err = r.source.SearchReleases(ctx, musicbrainz.ReleasesByArtist(req.ArtistID), releaseBrowseLimit)
	case len(req.SongIDs) > 0:
		releases, err = r.source.ReleasesWithRecording(ctx, req.SongIDs[0], releaseBrowseLimit)
	case len(req.SongTitles) > 0:
		releases, err = r.releasesForSongTitle(ctx, req.SongTitles[0])
	}
	if errors.Is(err, services.ErrNotFound) {
		return nil, nil
	}
	return releases, err
}

func (r *Resolver) releasesForSongTitle(ctx context.Context, title string) ([]musicbrainz.Release, error) {
	recordings, err := r.source.SearchRecordings(ctx, musicbrainz.RecordingQuery(title, "", ""), titleRecordingLimit)
	if err != nil {
		return nil, err
	}
	for _, rec := range recordings {
		if textutil.TitlesMatch(title, rec.Title) {
			return r.source.ReleasesWithRecording(ctx, rec.ID, releaseBrowseLimit)
		}
	}
	return nil, nil
}

func exactReleases(releases []musicbrainz.Release, title string) []musicbrainz.Release {
	var out []musicbrainz.Release
	for _, release := range releases {
		if textutil.TitlesMatch(title, release.Title) {
			out = append(out, release)
		}
	}
	return out
}

// rankReleases scores stubs, promotes the leaders to full detail and
// re-ranks them. A leader whose detail cannot be fetched keeps its stub.
func (r *Resolver) rankReleases(ctx context.Context, releases []musicbrainz.Release, required scoring.Requirement) ([]scoring.Candidate, error) {
	candidates := make([]scoring.Candidate, 0, len(releases))
	for _, release := range releases {
		candidates = append(candidates, scoring.Evaluate(release, required))
	}
	scoring.Sort(candidates)

	top := candidates[:min(promotedCandidates, len(candidates))]
	promoted := make([]scoring.Candidate, 0, len(top))
	for _, c := range top {
		full, err := r.source.Release(ctx, c.Release.ID)
		if err != nil {
			if services.IsFatal(err) {
				return nil, err
			}
			r.log(ctx).Debug("keeping release stub",
				logging.String(logging.FieldMBID, c.Release.ID),
				logging.Error(err))
			promoted = append(promoted, c)
			continue
		}
		promoted = append(promoted, scoring.Evaluate(c.Release.Merge(full), required))
	}
	scoring.Sort(promoted)
	return promoted, nil
}
