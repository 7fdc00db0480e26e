// Package recorder journals oracle runs (NAV computations, simulations and
// reloads) for auditing. The journal is write-only: nothing in the oracle
// reads it back, and it must not be exposed as a NAV history query surface.
package recorder

import "RenewraOracle/internal/model"

// NavRun records one NAV computation, successful or not.
type NavRun struct {
	Trigger      string // "SCHEDULE", "API", "COMMAND"
	NavCents     int64
	Breakdown    model.NavBreakdown
	MonthlyYield int64
	Result       string // "ok", "division_error", "invalid_result"
	Error        string
}

// SimulationRun records one monthly simulation step.
type SimulationRun struct {
	Trigger string
	Summary *model.SimulationSummary
}

// ReloadEvent records a portfolio reload attempt.
type ReloadEvent struct {
	Trigger  string
	Source   string
	Projects int
	Error    string
}

// Recorder is a write-only journal of oracle runs for auditing.
type Recorder interface {
	RecordNav(run *NavRun) error
	RecordSimulation(run *SimulationRun) error
	RecordReload(evt *ReloadEvent) error
	Close() error
}
