package recorder

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ardalan-sia/envyfree-traffic/pkg/junction"
	"github.com/ardalan-sia/envyfree-traffic/pkg/simulation"
)

// DB persists per-tick signal history to sqlite so a run can be inspected
// offline.
type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the database at path and ensures the schema.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			created TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS ticks (
			run_id TEXT,
			tick INTEGER,
			sim_time TIMESTAMP,
			active TEXT,
			phase TEXT,
			elapsed_ms INTEGER,
			allocated_ms INTEGER,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
		CREATE TABLE IF NOT EXISTS approach_ticks (
			run_id TEXT,
			tick INTEGER,
			approach TEXT,
			vehicle_count INTEGER,
			congestion TEXT,
			skips INTEGER,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// BeginRun registers a new run and returns its id.
func (db *DB) BeginRun() (string, error) {
	runID := uuid.NewString()
	_, err := db.Exec("INSERT INTO runs (run_id) VALUES (?)", runID)
	if err != nil {
		return "", err
	}
	return runID, nil
}

// RecordTick stores one time point: the signal row plus one row per
// approach.
func (db *DB) RecordTick(runID string, tp simulation.TimePoint) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	snap := tp.State
	_, err = tx.Exec(
		"INSERT INTO ticks (run_id, tick, sim_time, active, phase, elapsed_ms, allocated_ms) VALUES (?, ?, ?, ?, ?, ?, ?)",
		runID, snap.Tick, tp.Time, string(snap.Active), string(snap.Phase),
		snap.Elapsed.Milliseconds(), snap.Allocated.Milliseconds())
	if err != nil {
		return err
	}

	for _, a := range junction.AllApproaches {
		st := snap.Approaches[a]
		_, err = tx.Exec(
			"INSERT INTO approach_ticks (run_id, tick, approach, vehicle_count, congestion, skips) VALUES (?, ?, ?, ?, ?, ?)",
			runID, snap.Tick, string(a), st.VehicleCount, st.Congestion.String(), st.ConsecutiveSkips)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecordRun stores a whole run's worth of time points.
func (db *DB) RecordRun(runID string, timePoints []simulation.TimePoint) error {
	for _, tp := range timePoints {
		if err := db.RecordTick(runID, tp); err != nil {
			return fmt.Errorf("failed to record tick %d: %w", tp.State.Tick, err)
		}
	}
	return nil
}

// TickCount reports how many signal rows a run produced.
func (db *DB) TickCount(runID string) (int, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM ticks WHERE run_id = ?", runID).Scan(&n)
	return n, err
}
