package history

import (
	"database/sql"
	"errors"
	"time"
)

const runColumns = "id, database, force_all, last_page, status, success_count, failed_count, skipped_count, error_message, started_at, finished_at"

const outcomeColumns = "run_id, kind, page_id, title, status, reason, mbid, message, recorded_at"

type scanner interface{ Scan(dest ...any) error }

func scanRun(row scanner) (*Run, error) {
	var (
		run         Run
		forceAll    int
		lastPage    int
		status      string
		errorMsg    sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := row.Scan(
		&run.ID,
		&run.Database,
		&forceAll,
		&lastPage,
		&status,
		&run.Counts.Success,
		&run.Counts.Failed,
		&run.Counts.Skipped,
		&errorMsg,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}
	run.ForceAll = forceAll != 0
	run.LastPage = lastPage != 0
	run.Status = RunStatus(status)
	run.ErrorMessage = errorMsg.String
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}

func scanOutcome(row scanner) (*Outcome, error) {
	var (
		outcome     Outcome
		title       sql.NullString
		status      string
		reason      sql.NullString
		mbid        sql.NullString
		message     sql.NullString
		recordedRaw string
	)
	if err := row.Scan(
		&outcome.RunID,
		&outcome.Kind,
		&outcome.PageID,
		&title,
		&status,
		&reason,
		&mbid,
		&message,
		&recordedRaw,
	); err != nil {
		return nil, err
	}
	outcome.Title = title.String
	outcome.Status = OutcomeStatus(status)
	outcome.Reason = reason.String
	outcome.MBID = mbid.String
	outcome.Message = message.String
	if recorded, err := parseTimeString(recordedRaw); err == nil {
		outcome.RecordedAt = recorded
	}
	return &outcome, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// timeLayout keeps fractional seconds fixed-width so stored values sort
// lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
