package history

import "time"

// RunStatus is the lifecycle state of a sync run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCanceled  RunStatus = "canceled"
)

// OutcomeStatus is the terminal state of one page within a run.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// Counts aggregates outcomes for a run.
type Counts struct {
	Success int
	Failed  int
	Skipped int
}

// Total returns the number of processed pages.
func (c Counts) Total() int { return c.Success + c.Failed + c.Skipped }

// Add tallies one outcome.
func (c *Counts) Add(status OutcomeStatus) {
	switch status {
	case OutcomeSuccess:
		c.Success++
	case OutcomeFailed:
		c.Failed++
	case OutcomeSkipped:
		c.Skipped++
	}
}

// Run is one invocation of the sync orchestrator.
type Run struct {
	ID           string
	Database     string
	ForceAll     bool
	LastPage     bool
	Status       RunStatus
	Counts       Counts
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Duration returns how long the run took, or zero while it is still running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome records what happened to a single page.
type Outcome struct {
	RunID      string
	Kind       string
	PageID     string
	Title      string
	Status     OutcomeStatus
	Reason     string
	MBID       string
	Message    string
	RecordedAt time.Time
}
