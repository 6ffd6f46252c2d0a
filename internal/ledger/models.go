package ledger

import (
	"time"

	"github.com/opencontainers/go-digest"
)

// RunStatus is the lifecycle state of an install run.
type RunStatus string

const (
	// RunRunning marks a run that has started but not finished. A run left
	// in this state after the process exits was interrupted.
	RunRunning RunStatus = "running"
	// RunSucceeded means every discovered item was installed.
	RunSucceeded RunStatus = "succeeded"
	// RunPartial means the run finished but skipped at least one item.
	RunPartial RunStatus = "partial"
	// RunFailed means a fatal error stopped the run.
	RunFailed RunStatus = "failed"
)

// Outcome describes what happened to a single item.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped"
)

// Run is one install invocation.
type Run struct {
	ID          int64
	RunID       string
	Status      RunStatus
	GameExe     string
	ExeDigest   digest.Digest
	Assets      int
	Sounds      int
	HexEdits    int
	Videos      int
	Diagnostics int
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Duration returns how long the run took, or zero while it is running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary carries the final counters of a run.
type Summary struct {
	Status      RunStatus
	ExeDigest   digest.Digest
	Assets      int
	Sounds      int
	HexEdits    int
	Videos      int
	Diagnostics int
	Error       string
}

// Item is one attempted change to the game files.
type Item struct {
	ID       int64
	RunID    string
	Category string
	Mod      string
	Key      string
	Source   string
	Outcome  Outcome
	// Kind is the diagnostic kind for skipped items.
	Kind   string
	Detail string
	// Offset is the byte offset involved, or -1.
	Offset    int64
	Digest    digest.Digest
	CreatedAt time.Time
}
