package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ardalan-sia/envyfree-traffic/pkg/chart"
	"github.com/ardalan-sia/envyfree-traffic/pkg/config"
	"github.com/ardalan-sia/envyfree-traffic/pkg/dashboard"
	"github.com/ardalan-sia/envyfree-traffic/pkg/recorder"
	"github.com/ardalan-sia/envyfree-traffic/pkg/simulation"
)

var (
	configFile       string
	showTimeline     bool
	timelineLimit    int
	showEventSummary bool
	htmlReport       string
	recordPath       string
	verbose          bool
)

var rootCmd = &cobra.Command{
	Use:   "junction",
	Short: "Adaptive Junction Signal Simulator",
	Long: `A CLI tool that simulates an adaptive traffic signal controller for a
4-approach junction.

This tool reads a configuration file describing signal timing and synthetic
traffic demand (base levels plus cron-scheduled surges), drives the junction
controller tick by tick, and renders the resulting signal phases, fairness
overrides and congestion levels as terminal charts, an HTML report, or a
sqlite tick log.`,
	RunE: runSimulation,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVarP(&showTimeline, "timeline", "t", false, "Show detailed timeline of events")
	rootCmd.Flags().IntVarP(&timelineLimit, "timeline-limit", "l", 50, "Limit number of timeline events to display")
	rootCmd.Flags().BoolVarP(&showEventSummary, "summary", "s", true, "Show event summary")
	rootCmd.Flags().StringVar(&htmlReport, "html", "", "Write an HTML report to the given path")
	rootCmd.Flags().StringVar(&recordPath, "record", "", "Record the full tick history to a sqlite database at the given path")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Printf("Loaded configuration from %s\n", configFile)
	fmt.Printf("  - Green Durations: %s / %s / %s (low/medium/high)\n", cfg.MinGreen.Std(), cfg.MidGreen.Std(), cfg.MaxGreen.Std())
	fmt.Printf("  - Congestion Thresholds: %d / %d\n", cfg.LowThreshold, cfg.HighThreshold)
	fmt.Printf("  - Starvation Threshold: %d ticks\n", cfg.StarvationThreshold)
	fmt.Printf("  - Tick Interval: %s\n", cfg.TickInterval.Std())
	fmt.Printf("  - Simulation Duration: %s\n", cfg.SimulationDuration.Std())
	fmt.Printf("  - Approaches: %d\n\n", len(cfg.Approaches))

	// Create and run simulator
	sim, err := simulation.NewSimulator(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create simulator: %w", err)
	}
	if err := sim.Run(); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	// Generate and display charts
	chartGen := chart.NewGenerator()

	timePoints := sim.GetTimePoints()
	events := sim.GetEvents()
	warnings := sim.GetWarnings()

	// Display phase timeline and per-approach summary
	fmt.Println(chartGen.GeneratePhaseTimeline(timePoints))
	fmt.Println(chartGen.GenerateApproachSummary(timePoints))

	// Display event summary
	if showEventSummary {
		fmt.Println(chartGen.GenerateEventSummary(events))
	}

	// Display warnings
	fmt.Println(chartGen.GenerateWarnings(warnings))

	// Display detailed timeline if requested
	if showTimeline {
		fmt.Println(chartGen.GenerateDetailedTimeline(events, timelineLimit))
	}

	if htmlReport != "" {
		if err := dashboard.WriteHTML(htmlReport, timePoints); err != nil {
			return fmt.Errorf("failed to write HTML report: %w", err)
		}
		fmt.Printf("HTML report written to %s\n", htmlReport)
	}

	if recordPath != "" {
		db, err := recorder.NewDB(recordPath)
		if err != nil {
			return fmt.Errorf("failed to open tick database: %w", err)
		}
		defer db.Close()

		runID, err := db.BeginRun()
		if err != nil {
			return fmt.Errorf("failed to register run: %w", err)
		}
		if err := db.RecordRun(runID, timePoints); err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		fmt.Printf("Recorded %d ticks to %s (run %s)\n", len(timePoints), recordPath, runID)
	}

	return nil
}
