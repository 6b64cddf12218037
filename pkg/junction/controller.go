package junction

import (
	"fmt"
	"log/slog"
	"time"
)

// Config carries the controller timing parameters. MinGreen < MidGreen <
// MaxGreen and LowMax < HighMin are required orderings; a Config violating
// them is rejected at construction.
type Config struct {
	MinGreen time.Duration
	MidGreen time.Duration
	MaxGreen time.Duration

	// Congestion thresholds handed to the Estimator.
	LowMax  int
	HighMin int

	// StarvationThreshold is the number of ticks a waiting approach may be
	// passed over before the fairness override redirects the next phase to
	// it.
	StarvationThreshold int

	// AmberDuration inserts a transitional amber phase between one
	// approach's green end and the next approach's green start. Zero
	// disables it.
	AmberDuration time.Duration
}

// Validate checks the required orderings.
func (c Config) Validate() error {
	if c.MinGreen <= 0 {
		return newConfigError("minGreen", "duration must be positive")
	}
	if c.MidGreen <= c.MinGreen {
		return newConfigError("midGreen", fmt.Sprintf("duration %s must be greater than minGreen %s", c.MidGreen, c.MinGreen))
	}
	if c.MaxGreen <= c.MidGreen {
		return newConfigError("maxGreen", fmt.Sprintf("duration %s must be greater than midGreen %s", c.MaxGreen, c.MidGreen))
	}
	if c.StarvationThreshold <= 0 {
		return newConfigError("starvationThreshold", "must be a positive tick count")
	}
	if c.AmberDuration < 0 {
		return newConfigError("amberDuration", "duration must not be negative")
	}
	if _, err := NewEstimator(c.LowMax, c.HighMin); err != nil {
		return err
	}
	return nil
}

// Controller owns the four-approach state and the active-phase state
// machine for a single junction. It is driven by one synchronous Tick call
// per processing cycle and never blocks; CurrentState is safe to call
// concurrently because it only returns copies.
type Controller struct {
	cfg Config
	est Estimator
	log *slog.Logger

	tick      int
	active    Approach
	phase     PhaseState
	clock     PhaseClock
	allocated time.Duration
	forced    bool
	states    map[Approach]*ApproachState
}

// NewController validates cfg and starts the controller with NORTH green.
// A nil logger falls back to slog.Default.
func NewController(cfg Config, logger *slog.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid controller configuration: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	est, _ := NewEstimator(cfg.LowMax, cfg.HighMin)

	c := &Controller{
		cfg:    cfg,
		est:    est,
		log:    logger,
		active: North,
		phase:  PhaseGreen,
		states: make(map[Approach]*ApproachState, len(AllApproaches)),
	}
	for _, a := range AllApproaches {
		c.states[a] = &ApproachState{}
	}
	// The initial junction is empty, so the first phase runs at minimum
	// green.
	c.allocated = c.greenFor(Low)

	c.log.Debug("junction controller started",
		"minGreen", cfg.MinGreen,
		"midGreen", cfg.MidGreen,
		"maxGreen", cfg.MaxGreen,
		"starvationThreshold", cfg.StarvationThreshold,
		"amber", cfg.AmberDuration)
	return c, nil
}

// Tick advances the controller by one time step. counts holds the latest
// vehicle count per approach; a missing approach is coerced to zero and
// logged, a negative count or non-positive dt rejects the whole tick and
// the previous state is returned unchanged.
func (c *Controller) Tick(counts map[Approach]int, dt time.Duration) (Snapshot, error) {
	if dt <= 0 {
		return c.snapshot(), fmt.Errorf("%w: dt %s must be positive", ErrInvalidTimestep, dt)
	}
	for a, n := range counts {
		if n < 0 {
			return c.snapshot(), fmt.Errorf("approach %s: %w: vehicle count %d is negative", a, ErrInvalidMeasurement, n)
		}
	}

	c.tick++

	for _, a := range AllApproaches {
		n, ok := counts[a]
		if !ok {
			c.log.Warn("missing vehicle count, coercing to zero", "approach", a, "tick", c.tick)
			n = 0
		}
		level, err := c.est.Level(n)
		if err != nil {
			// Unreachable: counts were validated above.
			return c.snapshot(), err
		}

		st := c.states[a]
		st.VehicleCount = n
		st.Congestion = level
		if a != c.active {
			st.TicksSinceServed++
			st.ConsecutiveSkips++
		}
	}

	c.clock.Advance(dt)
	if c.clock.Elapsed() >= c.allocated {
		c.advancePhase()
	}

	return c.snapshot(), nil
}

// CurrentState returns the state at the end of the last tick. Repeated
// calls without an intervening Tick return identical snapshots.
func (c *Controller) CurrentState() Snapshot {
	return c.snapshot()
}

// advancePhase moves the state machine past an expired phase: green runs
// into amber when one is configured, otherwise straight to the successor's
// green.
func (c *Controller) advancePhase() {
	if c.phase == PhaseGreen && c.cfg.AmberDuration > 0 {
		c.phase = PhaseAmber
		c.allocated = c.cfg.AmberDuration
		c.clock.Reset()
		c.log.Debug("amber started", "approach", c.active, "tick", c.tick)
		return
	}
	c.activate(c.successor())
}

// successor picks the approach for the next green: the most starved waiting
// approach when the fairness override fires, the cyclic successor
// otherwise.
func (c *Controller) successor() (Approach, bool) {
	if starved, ok := c.starvedApproach(); ok {
		c.log.Info("fairness override",
			"approach", starved,
			"skips", c.states[starved].ConsecutiveSkips,
			"threshold", c.cfg.StarvationThreshold,
			"tick", c.tick)
		return starved, true
	}
	return c.active.Next(), false
}

// starvedApproach scans the waiting approaches for one whose
// ConsecutiveSkips exceeds the starvation threshold. Ties go to the highest
// skip count, then to the closest in cyclic order from the active approach.
func (c *Controller) starvedApproach() (Approach, bool) {
	var best Approach
	found := false
	for _, a := range AllApproaches {
		if a == c.active {
			continue
		}
		skips := c.states[a].ConsecutiveSkips
		if skips <= c.cfg.StarvationThreshold {
			continue
		}
		if !found {
			best, found = a, true
			continue
		}
		bestSkips := c.states[best].ConsecutiveSkips
		if skips > bestSkips {
			best = a
		} else if skips == bestSkips && c.active.distanceTo(a) < c.active.distanceTo(best) {
			best = a
		}
	}
	return best, found
}

// activate hands green to a. The allocated duration is computed exactly
// once here, so later count updates cannot shorten or lengthen a phase in
// progress.
func (c *Controller) activate(a Approach, forced bool) {
	c.active = a
	c.phase = PhaseGreen
	c.forced = forced
	c.clock.Reset()

	st := c.states[a]
	st.ConsecutiveSkips = 0
	st.TicksSinceServed = 0
	c.allocated = c.greenFor(st.Congestion)

	c.log.Debug("phase started",
		"approach", a,
		"congestion", st.Congestion.String(),
		"allocated", c.allocated,
		"tick", c.tick)
}

// greenFor maps a congestion level to its green duration, clamped to
// [MinGreen, MaxGreen] as a safety invariant.
func (c *Controller) greenFor(level CongestionLevel) time.Duration {
	var d time.Duration
	switch level {
	case Low:
		d = c.cfg.MinGreen
	case Medium:
		d = c.cfg.MidGreen
	default:
		d = c.cfg.MaxGreen
	}
	if d < c.cfg.MinGreen {
		d = c.cfg.MinGreen
	}
	if d > c.cfg.MaxGreen {
		d = c.cfg.MaxGreen
	}
	return d
}

// snapshot deep-copies the controller state into an immutable value.
func (c *Controller) snapshot() Snapshot {
	per := make(map[Approach]ApproachState, len(AllApproaches))
	for a, st := range c.states {
		per[a] = *st
	}
	return Snapshot{
		Tick:       c.tick,
		Active:     c.active,
		Phase:      c.phase,
		Elapsed:    c.clock.Elapsed(),
		Allocated:  c.allocated,
		Forced:     c.forced,
		Approaches: per,
	}
}
