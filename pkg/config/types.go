package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ardalan-sia/envyfree-traffic/pkg/junction"
)

// Duration wraps time.Duration so yaml values can be written as "15s" or
// "2m30s".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the entire configuration for the junction simulator.
type Config struct {
	// Signal timing.
	MinGreen      Duration `yaml:"minGreen"`
	MidGreen      Duration `yaml:"midGreen"`
	MaxGreen      Duration `yaml:"maxGreen"`
	AmberDuration Duration `yaml:"amberDuration,omitempty"`

	// Congestion thresholds: count < lowThreshold is LOW, count >=
	// highThreshold is HIGH.
	LowThreshold  int `yaml:"lowThreshold"`
	HighThreshold int `yaml:"highThreshold"`

	// Fairness: ticks a waiting approach may be passed over before the
	// override fires.
	StarvationThreshold int `yaml:"starvationThreshold"`

	// Exponential moving average factor applied to raw counts before they
	// reach the controller. 1 disables smoothing; omitted defaults to 1.
	SmoothingAlpha float64 `yaml:"smoothingAlpha,omitempty"`

	// Simulation cadence.
	TickInterval       Duration `yaml:"tickInterval"`
	SimulationDuration Duration `yaml:"simulationDuration"`

	Approaches []DemandPattern `yaml:"approaches"`
}

// DemandPattern describes the synthetic traffic arriving on one approach.
type DemandPattern struct {
	Approach  junction.Approach `yaml:"approach"`
	BaseCount int               `yaml:"baseCount"`
	Jitter    int               `yaml:"jitter,omitempty"`
	Surges    []Surge           `yaml:"surges,omitempty"`
}

// Surge is a cron-scheduled demand wave: every time the schedule fires,
// ExtraVehicles are added to the approach's count for Duration.
type Surge struct {
	CronSchedule  string   `yaml:"cronSchedule"`
	ExtraVehicles int      `yaml:"extraVehicles"`
	Duration      Duration `yaml:"duration"`
}

// ControllerConfig extracts the junction controller parameters.
func (c *Config) ControllerConfig() junction.Config {
	return junction.Config{
		MinGreen:            c.MinGreen.Std(),
		MidGreen:            c.MidGreen.Std(),
		MaxGreen:            c.MaxGreen.Std(),
		LowMax:              c.LowThreshold,
		HighMin:             c.HighThreshold,
		StarvationThreshold: c.StarvationThreshold,
		AmberDuration:       c.AmberDuration.Std(),
	}
}
