package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains local state locations.
type Paths struct {
	StateDir string `toml:"state_dir"`
	EnvFile  string `toml:"env_file"`
}

// Notion contains the page-database API credentials and endpoint.
type Notion struct {
	Token          string `toml:"token"`
	BaseURL        string `toml:"base_url"`
	Version        string `toml:"version"`
	RequestTimeout int    `toml:"request_timeout"`
	MaxRetries     int    `toml:"max_retries"`
}

// Databases contains the Notion database IDs per record kind. Blank IDs are
// skipped during sync; Locations is optional and only backs area relations.
type Databases struct {
	Artists   string `toml:"artists"`
	Albums    string `toml:"albums"`
	Songs     string `toml:"songs"`
	Labels    string `toml:"labels"`
	Locations string `toml:"locations"`
}

// MusicBrainz contains the metadata service endpoint and politeness settings.
type MusicBrainz struct {
	UserAgent      string `toml:"user_agent"`
	BaseURL        string `toml:"base_url"`
	CoverArtURL    string `toml:"cover_art_url"`
	MinIntervalMS  int    `toml:"min_interval_ms"`
	MaxRetries     int    `toml:"max_retries"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Spotify contains optional streaming-catalog credentials. Leaving either
// credential blank disables the fallback.
type Spotify struct {
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	TokenURL       string `toml:"token_url"`
	APIURL         string `toml:"api_url"`
	MinIntervalMS  int    `toml:"min_interval_ms"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Matching contains resolver policy switches.
type Matching struct {
	// LenientArtistLabel accepts the first search result for artists and
	// labels when no result name matches exactly.
	LenientArtistLabel bool `toml:"lenient_artist_label"`
	// RequireSongContainment fails album resolution when no candidate
	// contains every linked song instead of continuing best effort.
	RequireSongContainment bool `toml:"require_song_containment"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   bool   `toml:"file"`
}

// History controls the local run ledger.
type History struct {
	Enabled bool `toml:"enabled"`
	// KeepRuns bounds the ledger; older runs are pruned after each sync.
	// Zero keeps everything.
	KeepRuns int `toml:"keep_runs"`
}

// Properties holds the field to property-ID tables for each database.
type Properties struct {
	Artists FieldMap `toml:"artists"`
	Albums  FieldMap `toml:"albums"`
	Songs   FieldMap `toml:"songs"`
	Labels  FieldMap `toml:"labels"`
}

// Config encapsulates all configuration values for notionbrainz.
//
// Configuration is organized into sections:
//   - Paths: state directory and .env location
//   - Notion: API token and endpoint
//   - Databases: database IDs per record kind
//   - MusicBrainz: user agent, endpoints, rate limit and retries
//   - Spotify: optional fallback credentials
//   - Matching: resolver policy
//   - Logging: log format and level
//   - History: run ledger toggle
//   - Properties: semantic field to property ID tables
type Config struct {
	Paths       Paths       `toml:"paths"`
	Notion      Notion      `toml:"notion"`
	Databases   Databases   `toml:"databases"`
	MusicBrainz MusicBrainz `toml:"musicbrainz"`
	Spotify     Spotify     `toml:"spotify"`
	Matching    Matching    `toml:"matching"`
	Logging     Logging     `toml:"logging"`
	History     History     `toml:"history"`
	Properties  Properties  `toml:"properties"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/notionbrainz/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has environment fallbacks applied and paths expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadEnvFile(cfg.Paths.EnvFile); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("notionbrainz.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// loadEnvFile exports variables from a dotenv file without overriding values
// already present in the environment. A missing file is not an error.
func loadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("paths.env_file: %w", err)
	}
	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(expanded); err != nil {
		return fmt.Errorf("load env file %s: %w", expanded, err)
	}
	return nil
}

// EnsureDirectories creates the state directory used for the ledger, the run
// lock and the log file.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// HistoryPath returns the sqlite ledger location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, defaultHistoryFile)
}

// LockPath returns the run lock location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, defaultLockFile)
}

// LogPath returns the log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, defaultLogFileName)
}

// DatabaseID returns the configured database ID for kind.
func (c *Config) DatabaseID(kind Kind) string {
	switch kind {
	case KindArtists:
		return c.Databases.Artists
	case KindAlbums:
		return c.Databases.Albums
	case KindSongs:
		return c.Databases.Songs
	case KindLabels:
		return c.Databases.Labels
	default:
		return ""
	}
}

// Fields returns the property ID table for kind.
func (c *Config) Fields(kind Kind) FieldMap {
	switch kind {
	case KindArtists:
		return c.Properties.Artists
	case KindAlbums:
		return c.Properties.Albums
	case KindSongs:
		return c.Properties.Songs
	case KindLabels:
		return c.Properties.Labels
	default:
		return nil
	}
}

// SpotifyEnabled reports whether both Spotify credentials are present.
func (c *Config) SpotifyEnabled() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// MusicBrainzInterval returns the minimum spacing between metadata requests.
func (c *Config) MusicBrainzInterval() time.Duration {
	return time.Duration(c.MusicBrainz.MinIntervalMS) * time.Millisecond
}

// SpotifyInterval returns the minimum spacing between Spotify requests.
func (c *Config) SpotifyInterval() time.Duration {
	return time.Duration(c.Spotify.MinIntervalMS) * time.Millisecond
}

// Warnings returns non-fatal configuration concerns worth logging at startup.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Notion.Token != "" && !strings.HasPrefix(c.Notion.Token, "secret_") && !strings.HasPrefix(c.Notion.Token, "ntn_") {
		warnings = append(warnings, "notion.token does not look like an integration token (expected secret_ or ntn_ prefix)")
	}
	if !c.SpotifyEnabled() {
		warnings = append(warnings, "spotify credentials not set; cover and link fallbacks disabled")
	}
	if c.Databases.Locations == "" {
		warnings = append(warnings, "databases.locations not set; area relations will be skipped")
	}
	return warnings
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML with secrets masked.
func (c *Config) Encode() ([]byte, error) {
	masked := *c
	masked.Notion.Token = mask(masked.Notion.Token)
	masked.Spotify.ClientSecret = mask(masked.Spotify.ClientSecret)
	data, err := toml.Marshal(masked)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "…" + secret[len(secret)-4:]
}
