package recorder

import (
	"path/filepath"
	"testing"

	"RenewraOracle/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder() error: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func count(t *testing.T, r *SQLiteRecorder, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := r.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return n
}

func TestSQLiteRecorder_RecordNav(t *testing.T) {
	r := openTestRecorder(t)

	ok := &NavRun{
		Trigger:  "SCHEDULE",
		NavCents: 84000,
		Result:   "ok",
		Breakdown: model.NavBreakdown{
			SumProjectValuations: 1000000, CashOnHand: 50000, TotalDebt: 200000,
			PendingCapex: 10000, NetAssetValue: 840000, TokenSupply: 1000,
		},
		MonthlyYield: 5000,
	}
	if err := r.RecordNav(ok); err != nil {
		t.Fatalf("RecordNav() error: %v", err)
	}
	if err := r.RecordNav(&NavRun{Trigger: "API", Result: "division_error", Error: "token supply must be positive"}); err != nil {
		t.Fatalf("RecordNav() error: %v", err)
	}

	if n := count(t, r, `SELECT COUNT(*) FROM nav_runs`); n != 2 {
		t.Errorf("nav_runs rows = %d, want 2", n)
	}
	var cents, nav int64
	if err := r.db.QueryRow(`SELECT nav_cents, net_asset_value FROM nav_runs WHERE result = 'ok'`).Scan(&cents, &nav); err != nil {
		t.Fatal(err)
	}
	if cents != 84000 || nav != 840000 {
		t.Errorf("stored nav_cents=%d net_asset_value=%d, want 84000/840000", cents, nav)
	}
}

func TestSQLiteRecorder_RecordSimulation(t *testing.T) {
	r := openTestRecorder(t)

	run := &SimulationRun{
		Trigger: "SCHEDULE",
		Summary: &model.SimulationSummary{
			RunID:             "2d7c1c9e-8b0f-4b52-9d5c-5e4c3a1f0e11",
			Timestamp:         1700000000,
			ProjectsSimulated: 2,
			TotalMonthlyYield: 950000,
			Results: []model.ProjectSimulation{
				{ID: "solar_001", Type: model.ProjectSolar, OldCashFlow: 400000, NewCashFlow: 410000, WeatherVariance: 1.0123, DegradationRate: 0.005},
				{ID: "storage_001", Type: model.ProjectStorage, OldCashFlow: 150000, NewCashFlow: 140000, WeatherVariance: 0.9611, DegradationRate: 0.02},
			},
		},
	}
	if err := r.RecordSimulation(run); err != nil {
		t.Fatalf("RecordSimulation() error: %v", err)
	}

	if n := count(t, r, `SELECT COUNT(*) FROM simulation_runs`); n != 1 {
		t.Errorf("simulation_runs rows = %d, want 1", n)
	}
	if n := count(t, r, `SELECT COUNT(*) FROM simulation_results WHERE run_id = ?`, run.Summary.RunID); n != 2 {
		t.Errorf("simulation_results rows = %d, want 2", n)
	}

	// Duplicate run ids roll back the whole run.
	if err := r.RecordSimulation(run); err == nil {
		t.Error("expected error for duplicate run id")
	}
	if n := count(t, r, `SELECT COUNT(*) FROM simulation_results`); n != 2 {
		t.Errorf("simulation_results rows after failed insert = %d, want 2", n)
	}
}

func TestSQLiteRecorder_RecordReload(t *testing.T) {
	r := openTestRecorder(t)
	if err := r.RecordReload(&ReloadEvent{Trigger: "API", Source: "data/projects.json", Projects: 5}); err != nil {
		t.Fatalf("RecordReload() error: %v", err)
	}
	if n := count(t, r, `SELECT COUNT(*) FROM reloads WHERE projects = 5`); n != 1 {
		t.Errorf("reloads rows = %d, want 1", n)
	}
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	if err := rec.RecordNav(&NavRun{}); err != nil {
		t.Error(err)
	}
	if err := rec.Close(); err != nil {
		t.Error(err)
	}
}
