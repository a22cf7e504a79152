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

// SongRequest describes a local song record and its linked records.
type SongRequest struct {
	Lookup
	ArtistName string
	AlbumTitle string
	// AlbumID is the stored release ID of the linked album page. When set,
	// only recordings on that release are accepted.
	AlbumID string
}

// ResolveSong returns the recording for a local song record.
func (r *Resolver) ResolveSong(ctx context.Context, req SongRequest) (*musicbrainz.Recording, error) {
	if recording, done, err := storedOutcome(ctx, r, "song", req.Lookup, r.source.Recording); done {
		return recording, err
	}
	results, err := r.source.SearchRecordings(ctx, musicbrainz.RecordingQuery(req.Title, req.ArtistName, req.AlbumTitle), recordingSearchLimit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, notFound("song", req.Title)
	}

	album, err := r.linkedAlbum(ctx, req.AlbumID)
	if err != nil {
		return nil, err
	}
	titleMatched := false
	for _, result := range results {
		if !textutil.TitlesMatch(req.Title, result.Title) {
			continue
		}
		titleMatched = true
		if album != nil && !album.ContainsRecording(result.ID) {
			r.log(ctx).Debug("recording not on linked album",
				logging.String(logging.FieldMBID, result.ID),
				logging.String("album_id", album.ID))
			continue
		}
		return r.source.Recording(ctx, result.ID)
	}
	if titleMatched {
		return nil, services.Wrap(services.ErrNotFound, resolverComponentName, "resolve song",
			"no recording of "+quote(req.Title)+" appears on the linked album", nil)
	}
	return nil, noExactMatch("song", req.Title, results[0].Title)
}

func (r *Resolver) linkedAlbum(ctx context.Context, albumID string) (*musicbrainz.Release, error) {
	if albumID == "" {
		return nil, nil
	}
	album, err := r.source.Release(ctx, albumID)
	if errors.Is(err, services.ErrNotFound) {
		logging.WarnWithContext(r.log(ctx), "linked album id does not resolve; not filtering by album", "stale_id",
			logging.String("album_id", albumID),
			logging.String(logging.FieldImpact, "song may resolve to a recording from another release"),
		)
		return nil, nil
	}
	return album, err
}

// BestRelease picks the release a song is linked to: the recording's own
// releases, topped up with a title search when that pool is thin, ranked by
// the release score with a preference for releases whose track listing
// includes the recording.
func (r *Resolver) BestRelease(ctx context.Context, recording *musicbrainz.Recording) (*musicbrainz.Release, error) {
	pool := append([]musicbrainz.Release(nil), recording.Releases...)
	if len(pool) < minSongReleasePool || !anyCountry(pool) {
		artist := ""
		if len(recording.ArtistCredit) > 0 {
			artist = recording.ArtistCredit[0].DisplayName()
		}
		if recording.Title != "" && artist != "" {
			extra, err := r.source.SearchReleases(ctx, musicbrainz.ReleaseQuery(recording.Title, artist), fallbackReleaseLimit)
			switch {
			case err == nil:
				pool = unionReleases(pool, extra)
			case services.IsFatal(err):
				return nil, err
			default:
				logging.WarnWithContext(r.log(ctx), "release search failed; ranking known releases only", "release_search_failed",
					logging.String(logging.FieldTitle, recording.Title),
					logging.Error(err),
				)
			}
		}
	}
	if len(pool) == 0 {
		return nil, notFound("release", recording.Title)
	}
	ranked, err := r.rankReleases(ctx, pool, scoring.Requirement{RecordingIDs: []string{recording.ID}})
	if err != nil {
		return nil, err
	}
	best := ranked[0].Release
	return &best, nil
}

func anyCountry(releases []musicbrainz.Release) bool {
	for i := range releases {
		if releases[i].CountryCode() != "" {
			return true
		}
	}
	return false
}

func unionReleases(base, extra []musicbrainz.Release) []musicbrainz.Release {
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, release := range base {
		seen[release.ID] = struct{}{}
	}
	for _, release := range extra {
		if release.ID == "" {
			continue
		}
		if _, ok := seen[release.ID]; ok {
			continue
		}
		seen[release.ID] = struct{}{}
		base = append(base, release)
	}
	return base
}
