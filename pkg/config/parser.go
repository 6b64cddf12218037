package config

import (
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads and parses the configuration file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates the configuration. Ordering violations here are
// fatal: the controller refuses to start rather than run with undefined
// timing.
func validateConfig(config *Config) error {
	// Timing and fairness orderings are enforced by the controller config.
	if err := config.ControllerConfig().Validate(); err != nil {
		return err
	}

	if config.SmoothingAlpha == 0 {
		config.SmoothingAlpha = 1.0 // smoothing disabled
	}
	if config.SmoothingAlpha <= 0 || config.SmoothingAlpha > 1 {
		return fmt.Errorf("smoothingAlpha must be in (0, 1], got %v", config.SmoothingAlpha)
	}

	if config.TickInterval <= 0 {
		return fmt.Errorf("tickInterval must be greater than 0")
	}

	if config.SimulationDuration <= 0 {
		return fmt.Errorf("simulationDuration must be greater than 0")
	}

	if len(config.Approaches) == 0 {
		return fmt.Errorf("at least one approach demand pattern must be defined")
	}

	seen := map[string]bool{}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	for i, pattern := range config.Approaches {
		if !pattern.Approach.Valid() {
			return fmt.Errorf("approach %d: unknown approach %q", i, pattern.Approach)
		}

		if seen[string(pattern.Approach)] {
			return fmt.Errorf("approach %s: duplicate demand pattern", pattern.Approach)
		}
		seen[string(pattern.Approach)] = true

		if pattern.BaseCount < 0 {
			return fmt.Errorf("approach %s: baseCount must not be negative", pattern.Approach)
		}

		if pattern.Jitter < 0 {
			return fmt.Errorf("approach %s: jitter must not be negative", pattern.Approach)
		}

		for j, surge := range pattern.Surges {
			if surge.CronSchedule == "" {
				return fmt.Errorf("approach %s: surge %d: cronSchedule is required", pattern.Approach, j)
			}

			if _, err := parser.Parse(surge.CronSchedule); err != nil {
				return fmt.Errorf("approach %s: surge %d: invalid cron schedule: %w", pattern.Approach, j, err)
			}

			if surge.ExtraVehicles <= 0 {
				return fmt.Errorf("approach %s: surge %d: extraVehicles must be greater than 0", pattern.Approach, j)
			}

			if surge.Duration <= 0 {
				return fmt.Errorf("approach %s: surge %d: duration must be greater than 0", pattern.Approach, j)
			}
		}
	}

	return nil
}
