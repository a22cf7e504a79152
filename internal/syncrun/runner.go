package syncrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"notionbrainz/internal/catalog"
	"notionbrainz/internal/config"
	"notionbrainz/internal/history"
	"notionbrainz/internal/logging"
	"notionbrainz/internal/musicbrainz"
	"notionbrainz/internal/notion"
	"notionbrainz/internal/properties"
	"notionbrainz/internal/resolve"
	"notionbrainz/internal/services"
)

// DatabaseAll selects every configured database.
const DatabaseAll = "all"

// Store reads and writes Notion pages.
type Store interface {
	QueryDatabase(ctx context.Context, databaseID string, q notion.Query) ([]notion.Page, error)
	Page(ctx context.Context, id string) (*notion.Page, error)
	UpdatePage(ctx context.Context, pageID string, props notion.Properties, opts notion.PageOptions) error
	RelationIDs(ctx context.Context, pageID, propertyID string) ([]string, error)
}

// Resolver picks the MusicBrainz entity for a page.
type Resolver interface {
	ResolveArtist(ctx context.Context, l resolve.Lookup) (*musicbrainz.Artist, error)
	ResolveAlbum(ctx context.Context, req resolve.AlbumRequest) (*musicbrainz.Release, error)
	ResolveSong(ctx context.Context, req resolve.SongRequest) (*musicbrainz.Recording, error)
	ResolveLabel(ctx context.Context, l resolve.Lookup) (*musicbrainz.Label, error)
}

// Formatter turns resolved entities into page properties and covers.
type Formatter interface {
	Artist(ctx context.Context, a *musicbrainz.Artist) (properties.PropertySet, error)
	Album(ctx context.Context, r *musicbrainz.Release) (properties.PropertySet, error)
	Song(ctx context.Context, r *musicbrainz.Recording) (properties.PropertySet, error)
	Label(ctx context.Context, l *musicbrainz.Label) (properties.PropertySet, error)
	AlbumCover(ctx context.Context, r *musicbrainz.Release) (string, error)
	ArtistCover(ctx context.Context, a *musicbrainz.Artist) (string, error)
	RelationKeys(kind config.Kind) []string
}

// Recorder persists run and page outcomes.
type Recorder interface {
	StartRun(ctx context.Context, run history.Run) error
	RecordOutcome(ctx context.Context, outcome history.Outcome) error
	FinishRun(ctx context.Context, id string, status history.RunStatus, counts history.Counts, runErr error) error
}

// Resetter is a per-run cache.
type Resetter interface {
	Reset()
}

// Options select what a run processes.
type Options struct {
	// Database is a kind name or DatabaseAll.
	Database string
	// ForceAll re-syncs pages that already carry a MusicBrainz ID.
	ForceAll bool
	// LastPage processes only the most recently edited page per database.
	LastPage bool
}

// Deps are the collaborators of a Runner. Recorder and Caches are optional.
type Deps struct {
	Store     Store
	Bindings  map[config.Kind]*catalog.Binding
	Resolver  Resolver
	Formatter Formatter
	Recorder  Recorder
	Caches    []Resetter
	Logger    *slog.Logger
	Now       func() time.Time
	NewRunID  func() string
}

// Summary aggregates a finished run.
type Summary struct {
	RunID     string
	Status    history.RunStatus
	Counts    history.Counts
	PerKind   map[config.Kind]history.Counts
	Databases []config.Kind
	Duration  time.Duration
}

// AllFailed reports whether pages were processed and none of them succeeded
// or was skipped.
func (s *Summary) AllFailed() bool {
	return s.Counts.Failed > 0 && s.Counts.Success == 0 && s.Counts.Skipped == 0
}

// Runner executes sync runs.
type Runner struct {
	deps   Deps
	logger *slog.Logger
}

// New constructs a Runner.
func New(deps Deps) *Runner {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewRunID == nil {
		deps.NewRunID = uuid.NewString
	}
	return &Runner{deps: deps, logger: logging.NewComponentLogger(deps.Logger, "sync")}
}

// ParseDatabase expands a --database value into the kinds to process.
func ParseDatabase(value string) ([]config.Kind, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == DatabaseAll {
		return config.Kinds(), nil
	}
	for _, kind := range config.Kinds() {
		if string(kind) == value {
			return []config.Kind{kind}, nil
		}
	}
	return nil, services.Wrap(services.ErrConfiguration, "sync", "parse database",
		fmt.Sprintf("invalid database %q: must be artists, albums, songs, labels or all", value), nil)
}

// Run processes every selected database and returns the aggregate. The
// returned error is non-nil only for configuration errors and cancellation;
// per-page failures are reported through the summary.
func (r *Runner) Run(ctx context.Context, opts Options) (*Summary, error) {
	kinds, err := ParseDatabase(opts.Database)
	if err != nil {
		return nil, err
	}
	for _, cache := range r.deps.Caches {
		cache.Reset()
	}

	started := r.deps.Now()
	summary := &Summary{
		RunID:   r.deps.NewRunID(),
		Status:  history.RunCompleted,
		PerKind: make(map[config.Kind]history.Counts, len(kinds)),
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("sync started",
		logging.String(logging.FieldEventType, "sync_start"),
		logging.String("database", opts.Database),
		logging.Bool("force_all", opts.ForceAll),
		logging.Bool("last_page", opts.LastPage),
	)
	r.startRun(ctx, summary.RunID, opts, started)

	var runErr error
	for _, kind := range kinds {
		if ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}
		binding := r.deps.Bindings[kind]
		if binding == nil {
			logging.WarnWithContext(logger, "database not configured; skipping", "database_unconfigured",
				logging.String(logging.FieldDatabase, string(kind)),
				logging.String(logging.FieldImpact, "no pages synced for this database"),
				logging.String(logging.FieldErrorHint, "set databases."+string(kind)+" in the config"),
			)
			continue
		}
		summary.Databases = append(summary.Databases, kind)
		counts, err := r.syncDatabase(ctx, binding, opts, summary.RunID)
		summary.PerKind[kind] = counts
		summary.Counts.Success += counts.Success
		summary.Counts.Failed += counts.Failed
		summary.Counts.Skipped += counts.Skipped
		if err != nil {
			runErr = err
			break
		}
	}

	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		summary.Status = history.RunCanceled
	default:
		summary.Status = history.RunFailed
	}
	summary.Duration = r.deps.Now().Sub(started)
	r.finishRun(ctx, summary, runErr)

	logger.Info("sync completed",
		logging.String(logging.FieldEventType, "sync_complete"),
		logging.String("status", string(summary.Status)),
		logging.Int("success", summary.Counts.Success),
		logging.Int("failed", summary.Counts.Failed),
		logging.Int("skipped", summary.Counts.Skipped),
		logging.Duration("duration", summary.Duration),
	)
	return summary, runErr
}

func (r *Runner) syncDatabase(ctx context.Context, binding *catalog.Binding, opts Options, runID string) (history.Counts, error) {
	var counts history.Counts
	ctx = services.WithKind(ctx, string(binding.Kind))
	logger := logging.WithContext(ctx, r.logger)

	query := notion.Query{}
	if opts.LastPage {
		query.Sorts = []notion.Sort{notion.LastEditedFirst()}
		query.Limit = 1
	}
	pages, err := r.deps.Store.QueryDatabase(ctx, binding.DatabaseID, query)
	if err != nil {
		if services.IsFatal(err) {
			return counts, err
		}
		logging.ErrorWithContext(logger, "query database failed", "database_query_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the database ID and that the integration is shared with it"),
		)
		return counts, nil
	}
	if len(pages) == 0 {
		logging.WarnWithContext(logger, "no pages found", "database_empty",
			logging.String(logging.FieldImpact, "nothing to sync"),
		)
		return counts, nil
	}
	logger.Info("syncing database", logging.Int("pages", len(pages)))

	for i := range pages {
		if err := ctx.Err(); err != nil {
			return counts, err
		}
		page := &pages[i]
		res := r.syncPage(ctx, binding, page, opts.ForceAll)
		counts.Add(res.status)
		r.record(ctx, runID, binding.Kind, page, res)
		if res.err != nil && services.IsFatal(res.err) {
			return counts, res.err
		}
		logger.Debug("page completed",
			logging.Int("index", i+1),
			logging.Int("total", len(pages)),
		)
	}
	return counts, nil
}

func (r *Runner) startRun(ctx context.Context, id string, opts Options, started time.Time) {
	if r.deps.Recorder == nil {
		return
	}
	database := opts.Database
	if strings.TrimSpace(database) == "" {
		database = DatabaseAll
	}
	err := r.deps.Recorder.StartRun(ctx, history.Run{
		ID:        id,
		Database:  database,
		ForceAll:  opts.ForceAll,
		LastPage:  opts.LastPage,
		StartedAt: started,
	})
	if err != nil {
		r.ledgerWarning(ctx, "start run", err)
	}
}

func (r *Runner) record(ctx context.Context, runID string, kind config.Kind, page *notion.Page, res pageResult) {
	if r.deps.Recorder == nil {
		return
	}
	message := ""
	if res.err != nil {
		message = res.err.Error()
	}
	err := r.deps.Recorder.RecordOutcome(context.WithoutCancel(ctx), history.Outcome{
		RunID:   runID,
		Kind:    string(kind),
		PageID:  page.ID,
		Title:   res.title,
		Status:  res.status,
		Reason:  res.reason,
		MBID:    res.mbid,
		Message: message,
	})
	if err != nil {
		r.ledgerWarning(ctx, "record outcome", err)
	}
}

func (r *Runner) finishRun(ctx context.Context, summary *Summary, runErr error) {
	if r.deps.Recorder == nil {
		return
	}
	if err := r.deps.Recorder.FinishRun(context.WithoutCancel(ctx), summary.RunID, summary.Status, summary.Counts, runErr); err != nil {
		r.ledgerWarning(ctx, "finish run", err)
	}
}

func (r *Runner) ledgerWarning(ctx context.Context, op string, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, r.logger), "history ledger write failed", "history_write_failed",
		logging.String("operation", op),
		logging.Error(err),
		logging.String(logging.FieldImpact, "run history is incomplete"),
	)
}
