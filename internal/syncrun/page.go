package syncrun

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"notionbrainz/internal/catalog"
	"notionbrainz/internal/config"
	"notionbrainz/internal/history"
	"notionbrainz/internal/logging"
	"notionbrainz/internal/notion"
	"notionbrainz/internal/properties"
	"notionbrainz/internal/resolve"
	"notionbrainz/internal/services"
)

// Skip reasons recorded in the ledger.
const (
	SkipNoTitleMapping = "no_title_mapping"
	SkipNoTitle        = "no_title"
	SkipAlreadyLinked  = "already_linked"
)

type pageResult struct {
	status history.OutcomeStatus
	reason string
	title  string
	mbid   string
	err    error
}

func skipped(title, reason string) pageResult {
	return pageResult{status: history.OutcomeSkipped, reason: reason, title: title}
}

func failed(title string, err error) pageResult {
	return pageResult{status: history.OutcomeFailed, reason: services.FailureReason(err), title: title, err: err}
}

// resolved is what a kind-specific step hands to the shared write step.
type resolved struct {
	mbid  string
	props properties.PropertySet
	cover string
}

func (r *Runner) syncPage(ctx context.Context, binding *catalog.Binding, page *notion.Page, force bool) pageResult {
	ctx = services.WithPageID(ctx, page.ID)
	logger := logging.WithContext(ctx, r.logger)

	title, mapped := binding.Title(page)
	if !mapped {
		logging.WarnWithContext(logger, "title property not mapped; skipping page", "title_unmapped",
			logging.String(logging.FieldImpact, "page not synced"),
			logging.String(logging.FieldErrorHint, "map properties."+string(binding.Kind)+".title to the title property ID"),
		)
		return skipped("", SkipNoTitleMapping)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		logging.WarnWithContext(logger, "page has no title; skipping", "title_missing",
			logging.String(logging.FieldImpact, "page not synced"),
		)
		return skipped("", SkipNoTitle)
	}
	logger = logger.With(logging.String(logging.FieldTitle, title))
	logger.Info("processing page")

	lookup := resolve.Lookup{Title: title, StoredID: binding.StoredID(page), Force: force}
	out, err := r.resolve(ctx, binding.Kind, page, lookup)
	if errors.Is(err, resolve.ErrAlreadyLinked) {
		logger.Info("page already linked; skipping",
			logging.Args(logging.DecisionAttrs("sync_skip", "skipped", "stored MusicBrainz ID is valid; use --force-all to update")...)...,
		)
		return skipped(title, SkipAlreadyLinked)
	}
	if err != nil {
		return r.pageFailure(logger, title, "resolve failed", err)
	}

	opts := notion.PageOptions{CoverURL: out.cover, Icon: catalog.Icon(binding.Kind)}
	if err := r.deps.Store.UpdatePage(ctx, page.ID, out.props, opts); err != nil {
		if !errors.Is(err, services.ErrWriteFailure) && !services.IsFatal(err) {
			err = services.Wrap(services.ErrWriteFailure, "sync", "update page", "", err)
		}
		return r.pageFailure(logger, title, "page update failed", err)
	}
	logger.Info("page updated",
		logging.String(logging.FieldEventType, "page_updated"),
		logging.String(logging.FieldMBID, out.mbid),
		logging.Int("properties", len(out.props)),
	)
	return pageResult{status: history.OutcomeSuccess, title: title, mbid: out.mbid}
}

func (r *Runner) pageFailure(logger *slog.Logger, title, msg string, err error) pageResult {
	if services.IsFatal(err) {
		return failed(title, err)
	}
	logging.ErrorWithContext(logger, msg, "page_failed",
		logging.String("reason", services.FailureReason(err)),
		logging.Error(err),
	)
	return failed(title, err)
}

func (r *Runner) resolve(ctx context.Context, kind config.Kind, page *notion.Page, lookup resolve.Lookup) (resolved, error) {
	switch kind {
	case config.KindArtists:
		return r.resolveArtist(ctx, lookup)
	case config.KindAlbums:
		return r.resolveAlbum(ctx, page, lookup)
	case config.KindSongs:
		return r.resolveSong(ctx, page, lookup)
	case config.KindLabels:
		return r.resolveLabel(ctx, lookup)
	default:
		return resolved{}, services.Wrap(services.ErrConfiguration, "sync", "resolve", "unknown database kind "+string(kind), nil)
	}
}

func (r *Runner) resolveArtist(ctx context.Context, lookup resolve.Lookup) (resolved, error) {
	artist, err := r.deps.Resolver.ResolveArtist(ctx, lookup)
	if err != nil {
		return resolved{}, err
	}
	props, err := r.deps.Formatter.Artist(ctx, artist)
	if err != nil {
		return resolved{}, err
	}
	cover := r.cover(ctx, "artist", func() (string, error) { return r.deps.Formatter.ArtistCover(ctx, artist) })
	return resolved{mbid: artist.ID, props: props, cover: cover}, nil
}

func (r *Runner) resolveAlbum(ctx context.Context, page *notion.Page, lookup resolve.Lookup) (resolved, error) {
	relationKeys := r.deps.Formatter.RelationKeys(config.KindAlbums)
	r.completeRelations(ctx, page, relationKeys)
	req := resolve.AlbumRequest{Lookup: lookup}
	if artist, ok := r.firstLinked(ctx, page, config.KindAlbums, config.FieldArtist, config.KindArtists); ok {
		req.ArtistName = artist.title
		req.ArtistID = artist.mbid
	}
	for _, song := range r.linked(ctx, page, config.KindAlbums, config.FieldSongs, config.KindSongs) {
		if song.mbid != "" {
			req.SongIDs = append(req.SongIDs, song.mbid)
		}
		if song.title != "" {
			req.SongTitles = append(req.SongTitles, song.title)
		}
	}

	release, err := r.deps.Resolver.ResolveAlbum(ctx, req)
	if err != nil {
		return resolved{}, err
	}
	props, err := r.deps.Formatter.Album(ctx, release)
	if err != nil {
		return resolved{}, err
	}
	props = properties.MergeRelations(page, props, relationKeys)
	cover := r.cover(ctx, "album", func() (string, error) { return r.deps.Formatter.AlbumCover(ctx, release) })
	return resolved{mbid: release.ID, props: props, cover: cover}, nil
}

func (r *Runner) resolveSong(ctx context.Context, page *notion.Page, lookup resolve.Lookup) (resolved, error) {
	relationKeys := r.deps.Formatter.RelationKeys(config.KindSongs)
	r.completeRelations(ctx, page, relationKeys)
	req := resolve.SongRequest{Lookup: lookup}
	if artist, ok := r.firstLinked(ctx, page, config.KindSongs, config.FieldArtist, config.KindArtists); ok {
		req.ArtistName = artist.title
	}
	if album, ok := r.firstLinked(ctx, page, config.KindSongs, config.FieldAlbum, config.KindAlbums); ok {
		req.AlbumTitle = album.title
		req.AlbumID = album.mbid
	}

	recording, err := r.deps.Resolver.ResolveSong(ctx, req)
	if err != nil {
		return resolved{}, err
	}
	props, err := r.deps.Formatter.Song(ctx, recording)
	if err != nil {
		return resolved{}, err
	}
	props = properties.MergeRelations(page, props, relationKeys)
	return resolved{mbid: recording.ID, props: props}, nil
}

func (r *Runner) resolveLabel(ctx context.Context, lookup resolve.Lookup) (resolved, error) {
	label, err := r.deps.Resolver.ResolveLabel(ctx, lookup)
	if err != nil {
		return resolved{}, err
	}
	props, err := r.deps.Formatter.Label(ctx, label)
	if err != nil {
		return resolved{}, err
	}
	return resolved{mbid: label.ID, props: props}, nil
}

// cover runs a cover lookup whose failure only costs the page its cover.
func (r *Runner) cover(ctx context.Context, subject string, lookup func() (string, error)) string {
	cover, err := lookup()
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "cover lookup failed", "cover_failed",
			logging.String("subject", subject),
			logging.Error(err),
			logging.String(logging.FieldImpact, "page updated without a cover"),
		)
		return ""
	}
	return cover
}
