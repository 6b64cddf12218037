package chart

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardalan-sia/envyfree-traffic/pkg/junction"
	"github.com/ardalan-sia/envyfree-traffic/pkg/simulation"
)

func sampleTimePoints() []simulation.TimePoint {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	points := make([]simulation.TimePoint, 0, 40)

	active := junction.North
	for i := 0; i < 40; i++ {
		if i > 0 && i%10 == 0 {
			active = active.Next()
		}
		points = append(points, simulation.TimePoint{
			Time: start.Add(time.Duration(i) * time.Second),
			State: junction.Snapshot{
				Tick:      i + 1,
				Active:    active,
				Phase:     junction.PhaseGreen,
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

func TestGeneratePhaseTimeline(t *testing.T) {
	g := NewGenerator()

	out := g.GeneratePhaseTimeline(sampleTimePoints())
	for _, a := range junction.AllApproaches {
		assert.Contains(t, out, string(a))
	}
	assert.Contains(t, out, "█")
	assert.Contains(t, out, "Legend:")

	assert.Equal(t, "No data to display", g.GeneratePhaseTimeline(nil))
}

func TestGenerateApproachSummary(t *testing.T) {
	out := NewGenerator().GenerateApproachSummary(sampleTimePoints())

	assert.Contains(t, out, "Approach Summary")
	assert.Contains(t, out, "Green Share")
	for _, a := range junction.AllApproaches {
		assert.Contains(t, out, string(a))
	}
}

func TestGenerateEventSummary(t *testing.T) {
	events := []simulation.Event{
		{Type: simulation.EventTypePhaseStarted},
		{Type: simulation.EventTypePhaseStarted},
		{Type: simulation.EventTypeFairnessOverride, IsWarning: true},
	}

	out := NewGenerator().GenerateEventSummary(events)
	assert.Contains(t, out, "Total Events: 3")
	assert.Contains(t, out, "Phases Started: 2")
	assert.Contains(t, out, "Fairness Overrides: 1")
}

func TestGenerateWarnings(t *testing.T) {
	g := NewGenerator()

	assert.Contains(t, g.GenerateWarnings(nil), "No warnings!")

	warnings := []simulation.Event{
		{Time: time.Now(), Message: "Fairness override: EAST served ahead of cyclic order after NORTH", IsWarning: true},
	}
	out := g.GenerateWarnings(warnings)
	assert.Contains(t, out, "Fairness override")
	assert.Contains(t, out, "Total Warnings: 1")
}

func TestGenerateDetailedTimeline(t *testing.T) {
	events := make([]simulation.Event, 10)
	for i := range events {
		events[i] = simulation.Event{
			Time:     time.Now(),
			Type:     simulation.EventTypePhaseStarted,
			Approach: junction.North,
			Message:  "NORTH green",
		}
	}

	out := NewGenerator().GenerateDetailedTimeline(events, 4)
	require.Contains(t, out, "showing first 4 events")
	assert.Contains(t, out, "... and 6 more events")
	assert.Equal(t, 4, strings.Count(out, "NORTH green"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", FormatDuration(45*time.Second))
	assert.Equal(t, "5m", FormatDuration(5*time.Minute))
	assert.Equal(t, "2h30m", FormatDuration(2*time.Hour+30*time.Minute))
}
