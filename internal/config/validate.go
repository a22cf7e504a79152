package config

import (
	"fmt"
	"slices"
	"sort"

	"notionbrainz/internal/services"
)

// Validate ensures the configuration is usable. Every failure wraps
// services.ErrConfiguration so callers can abort before touching any record.
func (c *Config) Validate() error {
	if err := c.validateNotion(); err != nil {
		return err
	}
	if err := c.validateDatabases(); err != nil {
		return err
	}
	if err := c.validateMusicBrainz(); err != nil {
		return err
	}
	if err := c.validateSpotify(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.History.KeepRuns < 0 {
		return configError("history.keep_runs must be >= 0")
	}
	return c.validateProperties()
}

func (c *Config) validateNotion() error {
	if c.Notion.Token == "" {
		return configError("notion.token is required. Set NOTION_TOKEN env var or edit %s (create with 'notionbrainz config init')", defaultPathHint())
	}
	return nil
}

func (c *Config) validateDatabases() error {
	for _, kind := range Kinds() {
		if c.DatabaseID(kind) != "" {
			return nil
		}
	}
	return configError("at least one of databases.artists, databases.albums, databases.songs or databases.labels is required (NOTION_*_DATABASE_ID)")
}

func (c *Config) validateMusicBrainz() error {
	if c.MusicBrainz.UserAgent == "" {
		return configError("musicbrainz.user_agent is required (e.g. \"MyApp/1.0 (me@example.com)\"). Set MUSICBRAINZ_USER_AGENT env var or edit %s", defaultPathHint())
	}
	if c.MusicBrainz.MinIntervalMS < 0 {
		return configError("musicbrainz.min_interval_ms must be >= 0")
	}
	if c.MusicBrainz.MaxRetries < 0 {
		return configError("musicbrainz.max_retries must be >= 0")
	}
	return nil
}

func (c *Config) validateSpotify() error {
	if (c.Spotify.ClientID == "") != (c.Spotify.ClientSecret == "") {
		return configError("spotify.client_id and spotify.client_secret must be set together")
	}
	if c.Spotify.MinIntervalMS < 0 {
		return configError("spotify.min_interval_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return configError("logging.format must be one of auto, console, json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return configError("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateProperties() error {
	for _, kind := range Kinds() {
		known := knownFields[kind]
		fields := c.Fields(kind)
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if !slices.Contains(known, name) {
				return configError("properties.%s.%s is not a known field", kind, name)
			}
		}
	}
	return nil
}

func configError(format string, args ...any) error {
	return services.Wrap(services.ErrConfiguration, "config", "validate", fmt.Sprintf(format, args...), nil)
}

func defaultPathHint() string {
	path, err := DefaultConfigPath()
	if err != nil {
		return "~/.config/notionbrainz/config.toml"
	}
	return path
}
