package chart

import (
	"fmt"
	"strings"
	"time"

	"github.com/ardalan-sia/envyfree-traffic/pkg/junction"
	"github.com/ardalan-sia/envyfree-traffic/pkg/simulation"
)

const (
	chartWidth = 80
)

// Generator generates ASCII charts
type Generator struct {
	width int
}

// NewGenerator creates a new chart generator
func NewGenerator() *Generator {
	return &Generator{
		width: chartWidth,
	}
}

// GeneratePhaseTimeline generates an ASCII chart with one row per approach
// showing when it held green (█) or amber (▒) across the run.
func (g *Generator) GeneratePhaseTimeline(timePoints []simulation.TimePoint) string {
	if len(timePoints) == 0 {
		return "No data to display"
	}

	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Signal Phases Over Time\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	plotWidth := g.width - 8

	for _, approach := range junction.AllApproaches {
		sb.WriteString(fmt.Sprintf("%-6s |", approach))

		for x := 0; x < plotWidth; x++ {
			pointIndex := int(float64(x) / float64(plotWidth) * float64(len(timePoints)-1))
			if pointIndex >= len(timePoints) {
				pointIndex = len(timePoints) - 1
			}

			switch timePoints[pointIndex].State.PhaseFor(approach) {
			case junction.PhaseGreen:
				sb.WriteString("█")
			case junction.PhaseAmber:
				sb.WriteString("▒")
			default:
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}

	// X-axis
	sb.WriteString("       +")
	sb.WriteString(strings.Repeat("-", plotWidth))
	sb.WriteString("\n")

	sb.WriteString("        ")
	sb.WriteString(g.timeAxisLabels(timePoints, plotWidth))
	sb.WriteString("\n")

	// Legend
	sb.WriteString("\n")
	sb.WriteString("Legend:\n")
	sb.WriteString("    █ - Green\n")
	sb.WriteString("    ▒ - Amber\n")
	sb.WriteString("    (space) - Red\n")
	sb.WriteString("\n")

	return sb.String()
}

// timeAxisLabels builds an axis line with hourly (or minute-level, for
// short runs) markers.
func (g *Generator) timeAxisLabels(timePoints []simulation.TimePoint, plotWidth int) string {
	startTime := timePoints[0].Time
	endTime := timePoints[len(timePoints)-1].Time
	totalDuration := endTime.Sub(startTime)

	labelLine := make([]rune, plotWidth)
	for i := range labelLine {
		labelLine[i] = ' '
	}

	step := time.Hour
	format := "15:04"
	if totalDuration < 2*time.Hour {
		step = 10 * time.Minute
	}
	if totalDuration < 20*time.Minute {
		step = time.Minute
	}

	for mark := time.Duration(0); mark <= totalDuration; mark += step {
		position := 0
		if totalDuration > 0 {
			position = int(float64(mark) / float64(totalDuration) * float64(plotWidth))
		}

		label := startTime.Add(mark).Format(format)
		if position+len(label) <= plotWidth {
			for i, ch := range label {
				labelLine[position+i] = ch
			}
		}
	}

	return string(labelLine)
}

// GenerateApproachSummary generates a per-approach table: demand seen,
// green share, and how long the approach waited at worst.
func (g *Generator) GenerateApproachSummary(timePoints []simulation.TimePoint) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Approach Summary\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	if len(timePoints) == 0 {
		sb.WriteString("No data to display\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("%-8s %10s %10s %12s %12s\n",
		"Approach", "Avg Count", "Max Count", "Green Share", "Max Skips"))

	for _, approach := range junction.AllApproaches {
		var sum, max, greenTicks, maxSkips int
		for _, tp := range timePoints {
			st := tp.State.Approaches[approach]
			sum += st.VehicleCount
			if st.VehicleCount > max {
				max = st.VehicleCount
			}
			if st.ConsecutiveSkips > maxSkips {
				maxSkips = st.ConsecutiveSkips
			}
			if tp.State.PhaseFor(approach) == junction.PhaseGreen {
				greenTicks++
			}
		}

		avg := float64(sum) / float64(len(timePoints))
		share := float64(greenTicks) / float64(len(timePoints)) * 100

		sb.WriteString(fmt.Sprintf("%-8s %10.1f %10d %11.1f%% %12d\n",
			approach, avg, max, share, maxSkips))
	}

	sb.WriteString("\n")
	return sb.String()
}

// GenerateEventSummary generates a summary of events
func (g *Generator) GenerateEventSummary(events []simulation.Event) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Event Summary\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	// Group events by type
	eventsByType := make(map[simulation.EventType]int)
	for _, event := range events {
		eventsByType[event.Type]++
	}

	sb.WriteString(fmt.Sprintf("Total Events: %d\n", len(events)))
	sb.WriteString(fmt.Sprintf("  - Phases Started: %d\n", eventsByType[simulation.EventTypePhaseStarted]))
	sb.WriteString(fmt.Sprintf("  - Amber Phases: %d\n", eventsByType[simulation.EventTypeAmberStarted]))
	sb.WriteString(fmt.Sprintf("  - Fairness Overrides: %d\n", eventsByType[simulation.EventTypeFairnessOverride]))
	sb.WriteString(fmt.Sprintf("  - Surges Started: %d\n", eventsByType[simulation.EventTypeSurgeStarted]))
	sb.WriteString(fmt.Sprintf("  - Surges Ended: %d\n", eventsByType[simulation.EventTypeSurgeEnded]))
	sb.WriteString("\n")

	return sb.String()
}

// GenerateWarnings generates a list of warnings
func (g *Generator) GenerateWarnings(warnings []simulation.Event) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Warnings\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	if len(warnings) == 0 {
		sb.WriteString("No warnings!\n")
		return sb.String()
	}

	for _, warning := range warnings {
		timestamp := warning.Time.Format("2006-01-02 15:04:05")
		sb.WriteString(fmt.Sprintf("[%s] %s\n", timestamp, warning.Message))
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total Warnings: %d\n", len(warnings)))
	sb.WriteString("\n")

	return sb.String()
}

// GenerateDetailedTimeline generates a detailed timeline of events
func (g *Generator) GenerateDetailedTimeline(events []simulation.Event, limit int) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Detailed Timeline")
	if limit > 0 && limit < len(events) {
		sb.WriteString(fmt.Sprintf(" (showing first %d events)", limit))
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	displayCount := len(events)
	if limit > 0 && limit < displayCount {
		displayCount = limit
	}

	for i := 0; i < displayCount; i++ {
		event := events[i]
		timestamp := event.Time.Format("15:04:05")

		typeIcon := " "
		switch event.Type {
		case simulation.EventTypePhaseStarted:
			typeIcon = "G"
		case simulation.EventTypeAmberStarted:
			typeIcon = "A"
		case simulation.EventTypeFairnessOverride:
			typeIcon = "!"
		case simulation.EventTypeSurgeStarted:
			typeIcon = "+"
		case simulation.EventTypeSurgeEnded:
			typeIcon = "-"
		}

		sb.WriteString(fmt.Sprintf("[%s] %s [%s] %s\n",
			timestamp,
			typeIcon,
			event.Approach,
			event.Message))
	}

	if limit > 0 && limit < len(events) {
		sb.WriteString(fmt.Sprintf("\n... and %d more events\n", len(events)-limit))
	}

	sb.WriteString("\n")

	return sb.String()
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
