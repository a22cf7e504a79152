package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"notionbrainz/internal/catalog"
	"notionbrainz/internal/config"
	"notionbrainz/internal/history"
	"notionbrainz/internal/locations"
	"notionbrainz/internal/musicbrainz"
	"notionbrainz/internal/notion"
	"notionbrainz/internal/properties"
	"notionbrainz/internal/resolve"
	"notionbrainz/internal/spotify"
	"notionbrainz/internal/syncrun"
)

func newNotionClient(cfg *config.Config, logger *slog.Logger) (*notion.Client, error) {
	client, err := notion.New(cfg.Notion.Token,
		notion.WithBaseURL(cfg.Notion.BaseURL),
		notion.WithVersion(cfg.Notion.Version),
		notion.WithMaxRetries(cfg.Notion.MaxRetries),
		notion.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Notion.RequestTimeout) * time.Second}),
		notion.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("notion client: %w", err)
	}
	return client, nil
}

func newMusicBrainzClient(cfg *config.Config, logger *slog.Logger) (*musicbrainz.Client, error) {
	client, err := musicbrainz.New(cfg.MusicBrainz.UserAgent, cfg.MusicBrainz.BaseURL,
		musicbrainz.WithCoverArtURL(cfg.MusicBrainz.CoverArtURL),
		musicbrainz.WithMinInterval(cfg.MusicBrainzInterval()),
		musicbrainz.WithMaxRetries(cfg.MusicBrainz.MaxRetries),
		musicbrainz.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.MusicBrainz.RequestTimeout) * time.Second}),
		musicbrainz.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz client: %w", err)
	}
	return client, nil
}

func newSpotifyClient(cfg *config.Config, logger *slog.Logger) *spotify.Client {
	return spotify.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret,
		spotify.WithEndpoints(cfg.Spotify.TokenURL, cfg.Spotify.APIURL),
		spotify.WithMinInterval(cfg.SpotifyInterval()),
		spotify.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Spotify.RequestTimeout) * time.Second}),
		spotify.WithLogger(logger),
	)
}

// newRunner wires the sync pipeline. recorder may be nil.
func newRunner(ctx context.Context, cfg *config.Config, logger *slog.Logger, recorder *history.Store) (*syncrun.Runner, error) {
	store, err := newNotionClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	mb, err := newMusicBrainzClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	bindings, err := catalog.Bind(ctx, store, cfg)
	if err != nil {
		return nil, fmt.Errorf("load database schemas: %w", err)
	}

	resolver := resolve.New(mb, resolve.Options{
		LenientArtistLabel:     cfg.Matching.LenientArtistLabel,
		RequireSongContainment: cfg.Matching.RequireSongContainment,
	}, logger)
	linker := catalog.NewLinker(store, bindings, logger)
	places := locations.New(store, cfg.Databases.Locations, logger)

	deps := properties.Deps{
		Source:   mb,
		Releases: resolver,
		Linker:   linker,
		Places:   places,
		Logger:   logger,
	}
	if sp := newSpotifyClient(cfg, logger); sp.Enabled() {
		deps.Streaming = sp
	}
	formatter := properties.New(bindings, deps)
	linker.SetEnricher(formatter)

	runnerDeps := syncrun.Deps{
		Store:     store,
		Bindings:  bindings,
		Resolver:  resolver,
		Formatter: formatter,
		Caches:    []syncrun.Resetter{mb, linker, places},
		Logger:    logger,
	}
	if recorder != nil {
		runnerDeps.Recorder = recorder
	}
	return syncrun.New(runnerDeps), nil
}
