package junction

import (
	"time"
)

// Approach identifies one of the four directional streams entering the junction.
type Approach string

const (
	North Approach = "NORTH"
	East  Approach = "EAST"
	South Approach = "SOUTH"
	West  Approach = "WEST"
)

// AllApproaches lists the approaches in cyclic service order.
var AllApproaches = []Approach{North, East, South, West}

var approachIndex = map[Approach]int{
	North: 0,
	East:  1,
	South: 2,
	West:  3,
}

// Valid reports whether a names one of the four fixed approaches.
func (a Approach) Valid() bool {
	_, ok := approachIndex[a]
	return ok
}

// Next returns the cyclic successor (NORTH→EAST→SOUTH→WEST→NORTH).
func (a Approach) Next() Approach {
	return AllApproaches[(approachIndex[a]+1)%len(AllApproaches)]
}

// distanceTo returns the number of cyclic steps from a to b (0..3).
func (a Approach) distanceTo(b Approach) int {
	n := len(AllApproaches)
	return (approachIndex[b] - approachIndex[a] + n) % n
}

// CongestionLevel is a discretized traffic density bucket, totally ordered
// by severity.
type CongestionLevel int

const (
	Low CongestionLevel = iota
	Medium
	High
)

func (l CongestionLevel) String() string {
	switch l {
	case Low:
		return "LOW"
	case Medium:
		return "MEDIUM"
	case High:
		return "HIGH"
	}
	return "UNKNOWN"
}

// PhaseState is the signal colour held by the active approach. Every other
// approach is implicitly red.
type PhaseState string

const (
	PhaseGreen PhaseState = "green"
	PhaseAmber PhaseState = "amber"
	PhaseRed   PhaseState = "red"
)

// ApproachState is the per-approach view exposed in a Snapshot.
type ApproachState struct {
	VehicleCount     int
	Congestion       CongestionLevel
	TicksSinceServed int
	ConsecutiveSkips int
}

// Snapshot is an immutable copy of the controller state at the end of a
// tick. It never aliases controller-owned memory, so a rendering consumer
// may hold it across ticks.
type Snapshot struct {
	Tick      int
	Active    Approach
	Phase     PhaseState
	Elapsed   time.Duration
	Allocated time.Duration
	// Forced marks that the active approach was selected by the fairness
	// override rather than plain cyclic succession.
	Forced     bool
	Approaches map[Approach]ApproachState
}

// PhaseFor returns the signal colour shown to the given approach.
func (s Snapshot) PhaseFor(a Approach) PhaseState {
	if a == s.Active {
		return s.Phase
	}
	return PhaseRed
}
