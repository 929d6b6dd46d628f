package app

import (
	"time"

	"salvage-go/internal/salvage"
)

// Run statuses.
const (
	RunRunning = "running"
	RunSuccess = "success"
	RunPartial = "partial" // some files failed to recover
	RunError   = "error"
)

// Run tracks one CLI invocation. Its ID tags every log line written during
// the invocation.
type Run struct {
	ID         string
	Command    string
	Parameters string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
}

// NewRun starts a run identified by a short ID drawn from ids.
func NewRun(command, parameters string, ids salvage.IDGenerator, clock salvage.Clock) *Run {
	return &Run{
		ID:         shortID(ids.New()),
		Command:    command,
		Parameters: parameters,
		StartedAt:  clock.Now(),
		Status:     RunRunning,
	}
}

// Finish records the end of the run. Only the first call has any effect.
func (r *Run) Finish(status string, clock salvage.Clock) {
	if r.Finished() {
		return
	}
	r.FinishedAt = clock.Now()
	r.Status = status
}

// Finished reports whether Finish has been called.
func (r *Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Duration is the run's wall time, or zero while it is still running.
func (r *Run) Duration() time.Duration {
	if !r.Finished() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
