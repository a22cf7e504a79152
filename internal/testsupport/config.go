package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"notionbrainz/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// envKeys are the variables config.Load falls back to; tests blank them so
// the developer's environment cannot leak into a run.
var envKeys = []string{
	"LOG_LEVEL",
	"NOTION_TOKEN",
	"NOTION_ARTISTS_DATABASE_ID",
	"NOTION_ALBUMS_DATABASE_ID",
	"NOTION_SONGS_DATABASE_ID",
	"NOTION_LABELS_DATABASE_ID",
	"NOTION_LOCATIONS_DATABASE_ID",
	"MUSICBRAINZ_USER_AGENT",
	"SPOTIFY_CLIENT_ID",
	"SPOTIFY_CLIENT_SECRET",
}

// NewConfig produces a config seeded with a unique state directory per test.
// Rate limiting and retries are disabled and logs stay off disk.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.EnvFile = filepath.Join(base, "missing.env")
	cfgVal.Notion.Token = "secret_test"
	cfgVal.Notion.MaxRetries = 0
	cfgVal.MusicBrainz.UserAgent = "notionbrainz-test/1.0 (test@example.com)"
	cfgVal.MusicBrainz.MinIntervalMS = 0
	cfgVal.MusicBrainz.MaxRetries = 0
	cfgVal.Spotify.MinIntervalMS = 0
	cfgVal.Logging.Format = "json"
	cfgVal.Logging.Level = "error"
	cfgVal.Logging.File = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithNotionURL points the Notion client at a test server.
func WithNotionURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notion.BaseURL = url
	}
}

// WithMusicBrainzURL points the MusicBrainz and Cover Art clients at a test
// server.
func WithMusicBrainzURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.MusicBrainz.BaseURL = url
		b.cfg.MusicBrainz.CoverArtURL = url
	}
}

// WithDatabase sets the database ID for kind.
func WithDatabase(kind config.Kind, id string) ConfigOption {
	return func(b *configBuilder) {
		switch kind {
		case config.KindArtists:
			b.cfg.Databases.Artists = id
		case config.KindAlbums:
			b.cfg.Databases.Albums = id
		case config.KindSongs:
			b.cfg.Databases.Songs = id
		case config.KindLabels:
			b.cfg.Databases.Labels = id
		default:
			b.t.Fatalf("unknown database kind %q", kind)
		}
	}
}

// WithField maps a semantic field of kind to a property ID.
func WithField(kind config.Kind, field, propertyID string) ConfigOption {
	return func(b *configBuilder) {
		fields := b.cfg.Fields(kind)
		if fields == nil {
			b.t.Fatalf("unknown database kind %q", kind)
		}
		fields[field] = propertyID
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// WriteConfig encodes cfg as an unmasked TOML file next to its state
// directory and returns the path. Environment fallbacks are blanked for the
// duration of the test.
func WriteConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()

	for _, key := range envKeys {
		t.Setenv(key, "")
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
