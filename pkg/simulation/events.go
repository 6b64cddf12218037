package simulation

import (
	"time"

	"github.com/ardalan-sia/envyfree-traffic/pkg/junction"
)

// EventType defines the type of event in the simulation
type EventType string

const (
	EventTypePhaseStarted     EventType = "phase-started"
	EventTypeAmberStarted     EventType = "amber-started"
	EventTypeFairnessOverride EventType = "fairness-override"
	EventTypeSurgeStarted     EventType = "surge-started"
	EventTypeSurgeEnded       EventType = "surge-ended"
)

// Event represents a point-in-time event in the simulation
type Event struct {
	Time      time.Time
	Tick      int
	Type      EventType
	Approach  junction.Approach
	Allocated time.Duration
	Message   string
	IsWarning bool
}

// TimePoint pairs a wall-clock instant with the controller snapshot taken
// at that tick.
type TimePoint struct {
	Time  time.Time
	State junction.Snapshot
}
