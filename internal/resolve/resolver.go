package resolve

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"notionbrainz/internal/logging"
	"notionbrainz/internal/musicbrainz"
	"notionbrainz/internal/services"
)

// ErrAlreadyLinked reports that a record carries a stored ID that still
// resolves and no forced refresh was requested.
var ErrAlreadyLinked = errors.New("already linked")

const (
	entitySearchLimit     = 5
	recordingSearchLimit  = 20
	releaseBrowseLimit    = 100
	fallbackReleaseLimit  = 50
	titleRecordingLimit   = 5
	promotedCandidates    = 10
	minSongReleasePool    = 5
	resolverComponentName = "resolver"
)

// MetadataSource is the subset of the MusicBrainz client used for resolution.
type MetadataSource interface {
	SearchArtists(ctx context.Context, query string, limit int) ([]musicbrainz.Artist, error)
	SearchLabels(ctx context.Context, query string, limit int) ([]musicbrainz.Label, error)
	SearchReleases(ctx context.Context, query string, limit int) ([]musicbrainz.Release, error)
	SearchRecordings(ctx context.Context, query string, limit int) ([]musicbrainz.Recording, error)
	ReleasesWithRecording(ctx context.Context, recordingID string, limit int) ([]musicbrainz.Release, error)
	Artist(ctx context.Context, id string) (*musicbrainz.Artist, error)
	Release(ctx context.Context, id string) (*musicbrainz.Release, error)
	Recording(ctx context.Context, id string) (*musicbrainz.Recording, error)
	Label(ctx context.Context, id string) (*musicbrainz.Label, error)
}

// Options tunes matching strictness.
type Options struct {
	// LenientArtistLabel accepts the first search result for artists and
	// labels when no result matches the title exactly.
	LenientArtistLabel bool
	// RequireSongContainment fails album resolution when no candidate
	// release contains every linked song.
	RequireSongContainment bool
}

// Lookup is the part of a request shared by every record kind.
type Lookup struct {
	Title    string
	StoredID string
	Force    bool
}

func (l Lookup) storedID() string {
	return strings.TrimSpace(l.StoredID)
}

// Resolver picks remote entities for local records.
type Resolver struct {
	source MetadataSource
	opts   Options
	logger *slog.Logger
}

// New constructs a Resolver.
func New(source MetadataSource, opts Options, logger *slog.Logger) *Resolver {
	return &Resolver{
		source: source,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, resolverComponentName),
	}
}

func (r *Resolver) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, r.logger)
}

// storedOutcome handles the stored-ID branch shared by artists, labels and
// songs: a resolvable ID is either a skip or the forced result, a vanished ID
// falls through to search.
func storedOutcome[T any](ctx context.Context, r *Resolver, kind string, l Lookup, fetch func(context.Context, string) (*T, error)) (*T, bool, error) {
	id := l.storedID()
	if id == "" {
		return nil, false, nil
	}
	entity, err := fetch(ctx, id)
	switch {
	case err == nil:
		if !l.Force {
			r.log(ctx).Info("stored id still resolves",
				logging.Args(append(logging.DecisionAttrs(kind+"_stored_id", "skip", "already linked; force not set"),
					logging.String(logging.FieldMBID, id))...)...)
			return nil, true, ErrAlreadyLinked
		}
		return entity, true, nil
	case errors.Is(err, services.ErrNotFound):
		logging.WarnWithContext(r.log(ctx), "stored id no longer resolves; searching by title", "stale_id",
			logging.String(logging.FieldMBID, id),
			logging.String(logging.FieldErrorHint, "check the stored MusicBrainz ID"),
			logging.String(logging.FieldImpact, "record will be re-resolved by title"),
		)
		return nil, false, nil
	default:
		return nil, true, err
	}
}

func notFound(kind, title string) error {
	return services.Wrap(services.ErrNotFound, resolverComponentName, "resolve "+kind, "no candidates for "+quote(title), nil)
}

func noExactMatch(kind, title, closest string) error {
	message := "no exact match for " + quote(title)
	if closest != "" {
		message += "; closest was " + quote(closest)
	}
	return services.Wrap(services.ErrNoExactMatch, resolverComponentName, "resolve "+kind, message, nil)
}

func quote(s string) string {
	return `"` + s + `"`
}
