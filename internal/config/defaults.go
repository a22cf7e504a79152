package config

const (
	defaultStateDir              = "~/.local/share/notionbrainz"
	defaultEnvFile               = ".env"
	defaultNotionBaseURL         = "https://api.notion.com/v1"
	defaultNotionVersion         = "2022-06-28"
	defaultNotionRequestTimeout  = 30
	defaultNotionMaxRetries      = 3
	defaultMusicBrainzBaseURL    = "https://musicbrainz.org/ws/2"
	defaultCoverArtBaseURL       = "https://coverartarchive.org"
	defaultMusicBrainzIntervalMS = 1000
	defaultMusicBrainzMaxRetries = 3
	defaultMusicBrainzTimeout    = 30
	defaultSpotifyTokenURL       = "https://accounts.spotify.com/api/token"
	defaultSpotifyAPIURL         = "https://api.spotify.com/v1"
	defaultSpotifyIntervalMS     = 100
	defaultSpotifyTimeout        = 10
	defaultLogFormat             = "auto"
	defaultLogLevel              = "info"
	defaultLogFile               = true
	defaultHistoryEnabled        = true
	defaultHistoryFile           = "history.db"
	defaultHistoryKeepRuns       = 100
	defaultLockFile              = "notionbrainz.lock"
	defaultLogFileName           = "notionbrainz.log"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			EnvFile:  defaultEnvFile,
		},
		Notion: Notion{
			BaseURL:        defaultNotionBaseURL,
			Version:        defaultNotionVersion,
			RequestTimeout: defaultNotionRequestTimeout,
			MaxRetries:     defaultNotionMaxRetries,
		},
		MusicBrainz: MusicBrainz{
			BaseURL:        defaultMusicBrainzBaseURL,
			CoverArtURL:    defaultCoverArtBaseURL,
			MinIntervalMS:  defaultMusicBrainzIntervalMS,
			MaxRetries:     defaultMusicBrainzMaxRetries,
			RequestTimeout: defaultMusicBrainzTimeout,
		},
		Spotify: Spotify{
			TokenURL:       defaultSpotifyTokenURL,
			APIURL:         defaultSpotifyAPIURL,
			MinIntervalMS:  defaultSpotifyIntervalMS,
			RequestTimeout: defaultSpotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			File:   defaultLogFile,
		},
		History: History{
			Enabled:  defaultHistoryEnabled,
			KeepRuns: defaultHistoryKeepRuns,
		},
		Properties: Properties{
			Artists: FieldMap{FieldTitle: FieldTitle},
			Albums:  FieldMap{FieldTitle: FieldTitle},
			Songs:   FieldMap{FieldTitle: FieldTitle},
			Labels:  FieldMap{FieldTitle: FieldTitle},
		},
	}
}
