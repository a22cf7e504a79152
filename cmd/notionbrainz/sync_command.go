package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"notionbrainz/internal/config"
	"notionbrainz/internal/history"
	"notionbrainz/internal/logging"
	"notionbrainz/internal/runlock"
	"notionbrainz/internal/syncrun"
)

type syncFlags struct {
	database string
	forceAll bool
	lastPage bool
}

func (f *syncFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.database, "database", "d", f.database, "Database to sync: artists, albums, songs, labels or all")
	cmd.Flags().BoolVar(&f.forceAll, "force-all", f.forceAll, "Re-sync pages that already have a MusicBrainz ID")
	cmd.Flags().BoolVar(&f.lastPage, "last-page", f.lastPage, "Only sync the most recently edited page of each database")
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	opts := &syncFlags{database: syncrun.DatabaseAll}
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fill Notion pages with MusicBrainz metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, ctx, opts)
		},
	}
	opts.register(cmd)
	return cmd
}

func runSync(cmd *cobra.Command, ctx *commandContext, opts *syncFlags) error {
	if _, err := syncrun.ParseDatabase(opts.database); err != nil {
		return err
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logging.WarnWithContext(logger, "release run lock failed", "lock_release_failed", logging.Error(err))
		}
	}()

	var ledger *history.Store
	if cfg.History.Enabled {
		ledger, err = history.Open(cfg.HistoryPath())
		if err != nil {
			logging.WarnWithContext(logger, "history ledger unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this run is not recorded"),
			)
			ledger = nil
		} else {
			defer ledger.Close()
		}
	}

	runner, err := newRunner(signalCtx, cfg, logger, ledger)
	if err != nil {
		return err
	}
	summary, runErr := runner.Run(signalCtx, syncrun.Options{
		Database: opts.database,
		ForceAll: opts.forceAll,
		LastPage: opts.lastPage,
	})
	if ledger != nil {
		pruneHistory(logger, ledger, cfg)
	}
	if summary != nil {
		printSummary(cmd.OutOrStdout(), summary)
	}

	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		fmt.Fprintln(cmd.OutOrStdout(), "Sync interrupted; remaining pages were not processed")
		return nil
	default:
		return runErr
	}
	if summary.AllFailed() {
		return fmt.Errorf("all %d processed pages failed (see `notionbrainz history show %s`)", summary.Counts.Failed, shortID(summary.RunID))
	}
	return nil
}

func pruneHistory(logger *slog.Logger, ledger *history.Store, cfg *config.Config) {
	removed, err := ledger.Prune(context.Background(), cfg.History.KeepRuns)
	if err != nil {
		logging.WarnWithContext(logger, "history prune failed", "history_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "ledger keeps older runs"),
		)
		return
	}
	if removed > 0 {
		logger.Info("history pruned", logging.Int64("removed_runs", removed))
	}
}

func printSummary(out io.Writer, summary *syncrun.Summary) {
	headers := []string{"Database", "Success", "Failed", "Skipped"}
	rows := make([][]string, 0, len(summary.Databases)+1)
	for _, kind := range summary.Databases {
		counts := summary.PerKind[kind]
		rows = append(rows, countRow(string(kind), counts))
	}
	if len(summary.Databases) > 1 {
		rows = append(rows, countRow("total", summary.Counts))
	}
	fmt.Fprintf(out, "Run %s %s in %s\n", shortID(summary.RunID), summary.Status, summary.Duration.Round(time.Millisecond))
	fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignLeft, alignRight, alignRight, alignRight}))
}

func countRow(label string, counts history.Counts) []string {
	return []string{
		label,
		strconv.Itoa(counts.Success),
		strconv.Itoa(counts.Failed),
		strconv.Itoa(counts.Skipped),
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
