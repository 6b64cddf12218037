package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardalan-sia/envyfree-traffic/pkg/junction"
)

const validYAML = `
minGreen: 10s
midGreen: 20s
maxGreen: 60s
amberDuration: 3s
lowThreshold: 5
highThreshold: 15
starvationThreshold: 40
smoothingAlpha: 0.7
tickInterval: 1s
simulationDuration: 10m
approaches:
  - approach: NORTH
    baseCount: 4
    jitter: 2
    surges:
      - cronSchedule: "0 8 * * *"
        extraVehicles: 20
        duration: 30m
  - approach: EAST
    baseCount: 2
  - approach: SOUTH
    baseCount: 2
  - approach: WEST
    baseCount: 2
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.MinGreen.Std())
	assert.Equal(t, 20*time.Second, cfg.MidGreen.Std())
	assert.Equal(t, 60*time.Second, cfg.MaxGreen.Std())
	assert.Equal(t, 3*time.Second, cfg.AmberDuration.Std())
	assert.Equal(t, 5, cfg.LowThreshold)
	assert.Equal(t, 15, cfg.HighThreshold)
	assert.Equal(t, 40, cfg.StarvationThreshold)
	assert.InDelta(t, 0.7, cfg.SmoothingAlpha, 1e-9)
	require.Len(t, cfg.Approaches, 4)
	assert.Equal(t, junction.North, cfg.Approaches[0].Approach)
	require.Len(t, cfg.Approaches[0].Surges, 1)
	assert.Equal(t, 30*time.Minute, cfg.Approaches[0].Surges[0].Duration.Std())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_DefaultsSmoothingAlpha(t *testing.T) {
	body := `
minGreen: 10s
midGreen: 20s
maxGreen: 60s
lowThreshold: 5
highThreshold: 15
starvationThreshold: 40
tickInterval: 1s
simulationDuration: 10m
approaches:
  - approach: NORTH
    baseCount: 1
`
	cfg, err := LoadConfig(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.SmoothingAlpha, "omitted alpha disables smoothing")
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		return &Config{
			MinGreen:            Duration(10 * time.Second),
			MidGreen:            Duration(20 * time.Second),
			MaxGreen:            Duration(60 * time.Second),
			LowThreshold:        5,
			HighThreshold:       15,
			StarvationThreshold: 40,
			SmoothingAlpha:      0.7,
			TickInterval:        Duration(time.Second),
			SimulationDuration:  Duration(10 * time.Minute),
			Approaches: []DemandPattern{
				{Approach: junction.North, BaseCount: 3},
			},
		}
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"green durations out of order", func(c *Config) { c.MidGreen = c.MaxGreen }},
		{"min green not positive", func(c *Config) { c.MinGreen = 0 }},
		{"thresholds out of order", func(c *Config) { c.HighThreshold = c.LowThreshold }},
		{"starvation threshold not positive", func(c *Config) { c.StarvationThreshold = 0 }},
		{"alpha above one", func(c *Config) { c.SmoothingAlpha = 1.5 }},
		{"alpha negative", func(c *Config) { c.SmoothingAlpha = -0.1 }},
		{"tick interval not positive", func(c *Config) { c.TickInterval = 0 }},
		{"simulation duration not positive", func(c *Config) { c.SimulationDuration = 0 }},
		{"no approaches", func(c *Config) { c.Approaches = nil }},
		{"unknown approach", func(c *Config) { c.Approaches[0].Approach = "NORTHWEST" }},
		{"duplicate approach", func(c *Config) {
			c.Approaches = append(c.Approaches, DemandPattern{Approach: junction.North, BaseCount: 1})
		}},
		{"negative base count", func(c *Config) { c.Approaches[0].BaseCount = -1 }},
		{"negative jitter", func(c *Config) { c.Approaches[0].Jitter = -1 }},
		{"surge missing schedule", func(c *Config) {
			c.Approaches[0].Surges = []Surge{{ExtraVehicles: 5, Duration: Duration(time.Minute)}}
		}},
		{"surge invalid schedule", func(c *Config) {
			c.Approaches[0].Surges = []Surge{{CronSchedule: "not-a-cron", ExtraVehicles: 5, Duration: Duration(time.Minute)}}
		}},
		{"surge not positive", func(c *Config) {
			c.Approaches[0].Surges = []Surge{{CronSchedule: "0 8 * * *", ExtraVehicles: 0, Duration: Duration(time.Minute)}}
		}},
		{"surge without duration", func(c *Config) {
			c.Approaches[0].Surges = []Surge{{CronSchedule: "0 8 * * *", ExtraVehicles: 5}}
		}},
	}

	require.NoError(t, validateConfig(base()), "base config is valid")

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}
}

func TestDuration_UnmarshalRejectsGarbage(t *testing.T) {
	body := `
minGreen: soon
midGreen: 20s
maxGreen: 60s
lowThreshold: 5
highThreshold: 15
starvationThreshold: 40
tickInterval: 1s
simulationDuration: 10m
approaches:
  - approach: NORTH
    baseCount: 1
`
	_, err := LoadConfig(writeConfig(t, body))
	require.Error(t, err)
}
