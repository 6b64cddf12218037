package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardalan-sia/envyfree-traffic/pkg/junction"
	"github.com/ardalan-sia/envyfree-traffic/pkg/simulation"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "ticks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleTimePoints(n int) []simulation.TimePoint {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	points := make([]simulation.TimePoint, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, simulation.TimePoint{
			Time: start.Add(time.Duration(i) * time.Second),
			State: junction.Snapshot{
				Tick:      i + 1,
				Active:    junction.North,
				Phase:     junction.PhaseGreen,
				Elapsed:   time.Duration(i) * time.Second,
				Allocated: 10 * time.Second,
				Approaches: map[junction.Approach]junction.ApproachState{
					junction.North: {VehicleCount: 5, Congestion: junction.Low},
					junction.East:  {VehicleCount: 12, Congestion: junction.Medium},
					junction.South: {VehicleCount: 20, Congestion: junction.High},
					junction.West:  {VehicleCount: 1, Congestion: junction.Low},
				},
			},
		})
	}
	return points
}

func TestRecordRun(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.BeginRun()
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	require.NoError(t, db.RecordRun(runID, sampleTimePoints(5)))

	n, err := db.TickCount(runID)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	var approachRows int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM approach_ticks WHERE run_id = ?", runID).Scan(&approachRows))
	assert.Equal(t, 5*len(junction.AllApproaches), approachRows)

	var congestion string
	require.NoError(t, db.QueryRow(
		"SELECT congestion FROM approach_ticks WHERE run_id = ? AND approach = ? LIMIT 1",
		runID, string(junction.South)).Scan(&congestion))
	assert.Equal(t, "HIGH", congestion)
}

func TestRunsAreIsolated(t *testing.T) {
	db := openTestDB(t)

	first, err := db.BeginRun()
	require.NoError(t, err)
	second, err := db.BeginRun()
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	require.NoError(t, db.RecordRun(first, sampleTimePoints(3)))

	n, err := db.TickCount(second)
	require.NoError(t, err)
	assert.Zero(t, n)
}
