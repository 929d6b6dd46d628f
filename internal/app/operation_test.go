package app

import (
	"testing"
	"time"

	"salvage-go/internal/salvage"
	"salvage-go/internal/testutil"
)

func TestNewRun(t *testing.T) {
	clock := testutil.FixedClock()
	run := NewRun("recover", "webapp", testutil.NewStubIDGenerator(), clock)

	if run.ID != "id-1" {
		t.Errorf("ID = %q, want %q", run.ID, "id-1")
	}
	if run.Command != "recover" {
		t.Errorf("Command = %q, want %q", run.Command, "recover")
	}
	if run.Parameters != "webapp" {
		t.Errorf("Parameters = %q, want %q", run.Parameters, "webapp")
	}
	if run.Status != RunRunning {
		t.Errorf("Status = %q, want %q", run.Status, RunRunning)
	}
	if !run.StartedAt.Equal(clock.Now()) {
		t.Errorf("StartedAt = %v, want %v", run.StartedAt, clock.Now())
	}
	if run.Finished() {
		t.Error("new run should not be finished")
	}
}

func TestNewRun_ShortensUUIDs(t *testing.T) {
	run := NewRun("scan", "", salvage.UUIDGenerator{}, salvage.RealClock{})
	if len(run.ID) != 8 {
		t.Errorf("len(ID) = %d, want 8 (ID %q)", len(run.ID), run.ID)
	}
}

func TestRun_Finish(t *testing.T) {
	tests := []struct {
		name   string
		status string
	}{
		{name: "success", status: RunSuccess},
		{name: "partial", status: RunPartial},
		{name: "error", status: RunError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := testutil.FixedClock()
			run := NewRun("recover", "", testutil.NewStubIDGenerator(), clock)
			if run.Duration() != 0 {
				t.Errorf("Duration() before Finish = %v, want 0", run.Duration())
			}

			clock.Advance(1500 * time.Millisecond)
			run.Finish(tt.status, clock)

			if run.Status != tt.status {
				t.Errorf("Status = %q, want %q", run.Status, tt.status)
			}
			if run.Duration() != 1500*time.Millisecond {
				t.Errorf("Duration() = %v, want 1.5s", run.Duration())
			}
		})
	}
}

func TestRun_FinishOnlyOnce(t *testing.T) {
	clock := testutil.FixedClock()
	run := NewRun("recover", "", testutil.NewStubIDGenerator(), clock)

	run.Finish(RunError, clock)
	clock.Advance(time.Minute)
	run.Finish(RunSuccess, clock)

	if run.Status != RunError {
		t.Errorf("Status = %q, want %q", run.Status, RunError)
	}
	if run.Duration() != 0 {
		t.Errorf("Duration() = %v, want 0", run.Duration())
	}
}
