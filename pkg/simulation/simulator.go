package simulation

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ardalan-sia/envyfree-traffic/pkg/config"
	"github.com/ardalan-sia/envyfree-traffic/pkg/junction"
)

// surgeWindow is one concrete firing of a cron-scheduled demand surge.
type surgeWindow struct {
	approach junction.Approach
	from     time.Time
	to       time.Time
	extra    int

	started bool
	ended   bool
}

// Simulator drives the junction controller with synthetic per-approach
// vehicle counts, one coherent reading per approach per tick, and records
// the resulting signal history.
type Simulator struct {
	config     *config.Config
	controller *junction.Controller
	log        *slog.Logger
	rng        *rand.Rand

	events     []Event
	timePoints []TimePoint

	smoothed map[junction.Approach]float64

	simulationStart time.Time
	simulationEnd   time.Time
}

// NewSimulator builds the controller from cfg and anchors the simulated
// clock at today's midnight so daily cron surges land where a reader
// expects them.
func NewSimulator(cfg *config.Config, logger *slog.Logger) (*Simulator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	controller, err := junction.NewController(cfg.ControllerConfig(), logger)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	return &Simulator{
		config:          cfg,
		controller:      controller,
		log:             logger,
		rng:             rand.New(rand.NewSource(midnight.UnixNano())),
		events:          []Event{},
		timePoints:      []TimePoint{},
		smoothed:        map[junction.Approach]float64{},
		simulationStart: midnight,
		simulationEnd:   midnight.Add(cfg.SimulationDuration.Std()),
	}, nil
}

// Seed replaces the jitter source, so tests can run deterministically.
func (s *Simulator) Seed(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
}

// Run executes the simulation
func (s *Simulator) Run() error {
	windows, err := s.generateSurgeWindows()
	if err != nil {
		return err
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].from.Before(windows[j].from)
	})

	interval := s.config.TickInterval.Std()
	prev := s.controller.CurrentState()

	for now := s.simulationStart.Add(interval); !now.After(s.simulationEnd); now = now.Add(interval) {
		s.observeSurges(windows, now)

		counts := s.sampleCounts(windows, now)

		snap, err := s.controller.Tick(s.smooth(counts), interval)
		if err != nil {
			return fmt.Errorf("tick at %s failed: %w", now.Format(time.RFC3339), err)
		}

		s.observePhase(prev, snap, now)
		s.timePoints = append(s.timePoints, TimePoint{Time: now, State: snap})
		prev = snap
	}

	return nil
}

// generateSurgeWindows expands every cron schedule into concrete surge
// windows inside the simulation period.
func (s *Simulator) generateSurgeWindows() ([]*surgeWindow, error) {
	windows := []*surgeWindow{}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	for _, pattern := range s.config.Approaches {
		for _, surge := range pattern.Surges {
			schedule, err := parser.Parse(surge.CronSchedule)
			if err != nil {
				return nil, fmt.Errorf("approach %s: failed to parse cron schedule: %w", pattern.Approach, err)
			}

			currentTime := s.simulationStart
			for currentTime.Before(s.simulationEnd) {
				nextRun := schedule.Next(currentTime)
				if nextRun.After(s.simulationEnd) {
					break
				}

				windows = append(windows, &surgeWindow{
					approach: pattern.Approach,
					from:     nextRun,
					to:       nextRun.Add(surge.Duration.Std()),
					extra:    surge.ExtraVehicles,
				})

				currentTime = nextRun.Add(time.Minute) // Move forward to find next occurrence
			}
		}
	}

	return windows, nil
}

// sampleCounts produces one coherent per-approach count for the tick at
// now: base demand, bounded random jitter, plus any active surge windows.
func (s *Simulator) sampleCounts(windows []*surgeWindow, now time.Time) map[junction.Approach]int {
	counts := make(map[junction.Approach]int, len(s.config.Approaches))

	for _, pattern := range s.config.Approaches {
		n := pattern.BaseCount
		if pattern.Jitter > 0 {
			n += s.rng.Intn(2*pattern.Jitter+1) - pattern.Jitter
		}
		if n < 0 {
			n = 0
		}
		counts[pattern.Approach] = n
	}

	for _, w := range windows {
		if !now.Before(w.from) && now.Before(w.to) {
			counts[w.approach] += w.extra
		}
	}

	return counts
}

// smooth applies the configured exponential moving average to raw counts,
// mirroring how the original detector output was smoothed before signal
// decisions.
func (s *Simulator) smooth(raw map[junction.Approach]int) map[junction.Approach]int {
	alpha := s.config.SmoothingAlpha
	if alpha >= 1 {
		return raw
	}

	out := make(map[junction.Approach]int, len(raw))
	for a, n := range raw {
		s.smoothed[a] = alpha*s.smoothed[a] + (1-alpha)*float64(n)
		out[a] = int(math.Round(s.smoothed[a]))
	}
	return out
}

// observeSurges emits start/end events for windows crossed by this tick.
func (s *Simulator) observeSurges(windows []*surgeWindow, now time.Time) {
	for _, w := range windows {
		if !w.started && !now.Before(w.from) {
			w.started = true
			s.addEvent(Event{
				Time:     now,
				Type:     EventTypeSurgeStarted,
				Approach: w.approach,
				Message:  fmt.Sprintf("Surge started on %s (+%d vehicles for %s)", w.approach, w.extra, w.to.Sub(w.from)),
			})
		}
		if w.started && !w.ended && !now.Before(w.to) {
			w.ended = true
			s.addEvent(Event{
				Time:     now,
				Type:     EventTypeSurgeEnded,
				Approach: w.approach,
				Message:  fmt.Sprintf("Surge ended on %s", w.approach),
			})
		}
	}
}

// observePhase turns snapshot deltas into events. A forced handover means
// some approach crossed the starvation threshold, which is worth a warning
// in the run report.
func (s *Simulator) observePhase(prev, snap junction.Snapshot, now time.Time) {
	if snap.Active != prev.Active {
		s.addEvent(Event{
			Time:      now,
			Tick:      snap.Tick,
			Type:      EventTypePhaseStarted,
			Approach:  snap.Active,
			Allocated: snap.Allocated,
			Message: fmt.Sprintf("%s green for %s (congestion %s)",
				snap.Active, snap.Allocated, snap.Approaches[snap.Active].Congestion),
		})

		if snap.Forced {
			s.addEvent(Event{
				Time:      now,
				Tick:      snap.Tick,
				Type:      EventTypeFairnessOverride,
				Approach:  snap.Active,
				Message:   fmt.Sprintf("Fairness override: %s served ahead of cyclic order after %s", snap.Active, prev.Active),
				IsWarning: true,
			})
		}
		return
	}

	if snap.Phase == junction.PhaseAmber && prev.Phase != junction.PhaseAmber {
		s.addEvent(Event{
			Time:      now,
			Tick:      snap.Tick,
			Type:      EventTypeAmberStarted,
			Approach:  snap.Active,
			Allocated: snap.Allocated,
			Message:   fmt.Sprintf("%s amber for %s", snap.Active, snap.Allocated),
		})
	}
}

// addEvent adds an event to the event list
func (s *Simulator) addEvent(event Event) {
	s.events = append(s.events, event)
}

// GetEvents returns all events
func (s *Simulator) GetEvents() []Event {
	return s.events
}

// GetTimePoints returns all time points
func (s *Simulator) GetTimePoints() []TimePoint {
	return s.timePoints
}

// GetWarnings returns all warning events
func (s *Simulator) GetWarnings() []Event {
	warnings := []Event{}
	for _, event := range s.events {
		if event.IsWarning {
			warnings = append(warnings, event)
		}
	}
	return warnings
}
