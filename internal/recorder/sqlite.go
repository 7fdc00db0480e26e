package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"RenewraOracle/internal/logger"
)

// SQLiteRecorder persists the run journal to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS nav_runs (
			id                     INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp              INTEGER NOT NULL,
			triggered_by           TEXT,
			result                 TEXT,
			nav_cents              INTEGER,
			sum_project_valuations INTEGER,
			cash_on_hand           INTEGER,
			total_debt             INTEGER,
			pending_capex          INTEGER,
			net_asset_value        INTEGER,
			token_supply           INTEGER,
			operational_projects   INTEGER,
			total_projects         INTEGER,
			monthly_yield          INTEGER,
			error                  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_nav_runs_ts ON nav_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS simulation_runs (
			run_id              TEXT PRIMARY KEY,
			timestamp           INTEGER NOT NULL,
			triggered_by        TEXT,
			projects_simulated  INTEGER,
			total_monthly_yield INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_simulation_runs_ts ON simulation_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS simulation_results (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id           TEXT NOT NULL REFERENCES simulation_runs(run_id),
			project_id       TEXT NOT NULL,
			project_type     TEXT,
			old_cash_flow    INTEGER,
			new_cash_flow    INTEGER,
			weather_variance REAL,
			degradation_rate REAL,
			monthly_revenue  INTEGER,
			monthly_opex     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_simulation_results_run ON simulation_results(run_id)`,

		`CREATE TABLE IF NOT EXISTS reloads (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			triggered_by TEXT,
			source    TEXT,
			projects  INTEGER,
			error     TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordNav(run *NavRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := run.Breakdown
	_, err := r.db.Exec(`INSERT INTO nav_runs
		(timestamp, triggered_by, result, nav_cents,
		 sum_project_valuations, cash_on_hand, total_debt, pending_capex,
		 net_asset_value, token_supply, operational_projects, total_projects,
		 monthly_yield, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), run.Trigger, run.Result, run.NavCents,
		b.SumProjectValuations, b.CashOnHand, b.TotalDebt, b.PendingCapex,
		b.NetAssetValue, b.TokenSupply, b.OperationalProjects, b.TotalProjects,
		run.MonthlyYield, run.Error,
	)
	return err
}

// RecordSimulation writes the run header and its per-project rows in one transaction.
func (r *SQLiteRecorder) RecordSimulation(run *SimulationRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := run.Summary
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO simulation_runs
		(run_id, timestamp, triggered_by, projects_simulated, total_monthly_yield)
		VALUES (?,?,?,?,?)`,
		s.RunID, s.Timestamp, run.Trigger, s.ProjectsSimulated, s.TotalMonthlyYield,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO simulation_results
		(run_id, project_id, project_type, old_cash_flow, new_cash_flow,
		 weather_variance, degradation_rate, monthly_revenue, monthly_opex)
		VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare results: %w", err)
	}
	defer stmt.Close()

	for _, res := range s.Results {
		if _, err := stmt.Exec(s.RunID, res.ID, string(res.Type), res.OldCashFlow, res.NewCashFlow,
			res.WeatherVariance, res.DegradationRate, res.MonthlyRevenue, res.MonthlyOpex); err != nil {
			return fmt.Errorf("insert result %s: %w", res.ID, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordReload(evt *ReloadEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO reloads
		(timestamp, triggered_by, source, projects, error)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.Trigger, evt.Source, evt.Projects, evt.Error,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	logger.Info("closing sqlite recorder")
	return r.db.Close()
}
