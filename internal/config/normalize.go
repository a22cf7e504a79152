package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeNotion()
	c.normalizeDatabases()
	c.normalizeMusicBrainz()
	c.normalizeSpotify()
	c.normalizeLogging()
	c.normalizeProperties()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotion() {
	c.Notion.Token = envFallback(c.Notion.Token, "NOTION_TOKEN")
	c.Notion.BaseURL = strings.TrimRight(orDefault(c.Notion.BaseURL, defaultNotionBaseURL), "/")
	c.Notion.Version = orDefault(c.Notion.Version, defaultNotionVersion)
	if c.Notion.RequestTimeout <= 0 {
		c.Notion.RequestTimeout = defaultNotionRequestTimeout
	}
	if c.Notion.MaxRetries < 0 {
		c.Notion.MaxRetries = 0
	}
}

func (c *Config) normalizeDatabases() {
	c.Databases.Artists = envFallback(c.Databases.Artists, "NOTION_ARTISTS_DATABASE_ID")
	c.Databases.Albums = envFallback(c.Databases.Albums, "NOTION_ALBUMS_DATABASE_ID")
	c.Databases.Songs = envFallback(c.Databases.Songs, "NOTION_SONGS_DATABASE_ID")
	c.Databases.Labels = envFallback(c.Databases.Labels, "NOTION_LABELS_DATABASE_ID")
	c.Databases.Locations = envFallback(c.Databases.Locations, "NOTION_LOCATIONS_DATABASE_ID")
}

func (c *Config) normalizeMusicBrainz() {
	c.MusicBrainz.UserAgent = envFallback(c.MusicBrainz.UserAgent, "MUSICBRAINZ_USER_AGENT")
	c.MusicBrainz.BaseURL = strings.TrimRight(orDefault(c.MusicBrainz.BaseURL, defaultMusicBrainzBaseURL), "/")
	c.MusicBrainz.CoverArtURL = strings.TrimRight(orDefault(c.MusicBrainz.CoverArtURL, defaultCoverArtBaseURL), "/")
	if c.MusicBrainz.RequestTimeout <= 0 {
		c.MusicBrainz.RequestTimeout = defaultMusicBrainzTimeout
	}
}

func (c *Config) normalizeSpotify() {
	c.Spotify.ClientID = envFallback(c.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	c.Spotify.ClientSecret = envFallback(c.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")
	c.Spotify.TokenURL = orDefault(c.Spotify.TokenURL, defaultSpotifyTokenURL)
	c.Spotify.APIURL = strings.TrimRight(orDefault(c.Spotify.APIURL, defaultSpotifyAPIURL), "/")
	if c.Spotify.RequestTimeout <= 0 {
		c.Spotify.RequestTimeout = defaultSpotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(orDefault(c.Logging.Level, defaultLogLevel))
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
	c.Logging.Format = strings.ToLower(orDefault(c.Logging.Format, defaultLogFormat))
}

func (c *Config) normalizeProperties() {
	c.Properties.Artists = normalizeFieldMap(c.Properties.Artists)
	c.Properties.Albums = normalizeFieldMap(c.Properties.Albums)
	c.Properties.Songs = normalizeFieldMap(c.Properties.Songs)
	c.Properties.Labels = normalizeFieldMap(c.Properties.Labels)
}

func normalizeFieldMap(m FieldMap) FieldMap {
	out := make(FieldMap, len(m)+1)
	for field, id := range m {
		field = strings.ToLower(strings.TrimSpace(field))
		id = strings.TrimSpace(id)
		if field == "" || id == "" {
			continue
		}
		out[field] = id
	}
	if _, ok := out[FieldTitle]; !ok {
		out[FieldTitle] = FieldTitle
	}
	return out
}

func envFallback(value, key string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	if env, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(env)
	}
	return ""
}

func orDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}
