package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"notionbrainz/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent sync runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(ctx, func(ledger *history.Store) error {
				runs, err := ledger.Runs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				printRuns(cmd.OutOrStdout(), runs)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the page outcomes of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(ctx, func(ledger *history.Store) error {
				run, err := ledger.Run(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", args[0])
				}
				outcomes, err := ledger.Outcomes(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				printRun(cmd.OutOrStdout(), run, outcomes)
				return nil
			})
		},
	}
}

func withLedger(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ledger, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer ledger.Close()
	return fn(ledger)
}

func printRuns(out io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Database,
			string(run.Status),
			strconv.Itoa(run.Counts.Success),
			strconv.Itoa(run.Counts.Failed),
			strconv.Itoa(run.Counts.Skipped),
			formatDuration(run),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Started", "Database", "Status", "Success", "Failed", "Skipped", "Duration"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
}

func printRun(out io.Writer, run *history.Run, outcomes []history.Outcome) {
	fmt.Fprintf(out, "Run:       %s\n", run.ID)
	fmt.Fprintf(out, "Started:   %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Database:  %s\n", run.Database)
	fmt.Fprintf(out, "Force all: %s\n", yesNo(run.ForceAll))
	fmt.Fprintf(out, "Last page: %s\n", yesNo(run.LastPage))
	fmt.Fprintf(out, "Status:    %s (%s)\n", run.Status, formatDuration(*run))
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:     %s\n", run.ErrorMessage)
	}
	if len(outcomes) == 0 {
		fmt.Fprintln(out, "No pages processed")
		return
	}
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []string{o.Kind, o.Title, string(o.Status), o.Reason, o.MBID})
	}
	fmt.Fprintln(out, renderTable([]string{"Database", "Title", "Status", "Reason", "MBID"}, rows, nil))
}

func formatDuration(run history.Run) string {
	if run.FinishedAt == nil {
		return "-"
	}
	return run.Duration().Round(time.Millisecond).String()
}
