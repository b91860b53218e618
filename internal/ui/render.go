package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ngmaloney/swellwatch/internal/engine"
	"github.com/ngmaloney/swellwatch/internal/geo"
	"github.com/ngmaloney/swellwatch/internal/models"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// Stations renders a station list, nearest first.
func Stations(title string, neighbors []geo.Neighbor) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	if len(neighbors) == 0 {
		b.WriteString(mutedStyle.Render("No stations found"))
		return b.String()
	}

	t := newTable("Kind", "ID", "Name", "Region", "Exposure", "Distance")
	for _, n := range neighbors {
		exposure := string(n.Station.Exposure)
		if exposure == "" {
			exposure = "-"
		}
		t.Row(
			string(n.Station.Kind),
			n.Station.ID,
			n.Station.Name,
			n.Station.Region,
			exposure,
			fmt.Sprintf("%.1f mi", n.DistanceMiles),
		)
	}
	b.WriteString(t.String())
	return b.String()
}

// Tide renders the interpolated state followed by the high and low
// predictions for the day of the query and the next two days.
func Tide(stationID string, state models.TideState, stale bool, predictions []models.TidePrediction) string {
	var lines []string
	lines = append(lines, titleStyle.Render(fmt.Sprintf("Tide at %s", stationID)))

	current := fmt.Sprintf("%s %s  %s",
		labelStyle.Render("Now:"),
		valueStyle.Render(fmt.Sprintf("%.2f ft", state.HeightFt)),
		directionLabel(state.Direction))
	if stale {
		current += "  " + warningStyle.Render("(stale)")
	}
	lines = append(lines, current, mutedStyle.Render(state.AsOf.Format(time.RFC1123)), "")

	shown := false
	for day := 0; day < 3; day++ {
		date := state.AsOf.AddDate(0, 0, day)
		events := models.EventsForDay(predictions, date)
		if len(events) == 0 {
			continue
		}
		shown = true

		var dayLabel string
		switch day {
		case 0:
			dayLabel = "Today"
		case 1:
			dayLabel = "Tomorrow"
		default:
			dayLabel = date.Format("Monday")
		}
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render(dayLabel), mutedStyle.Render(date.Format("Jan 2"))))

		for _, event := range events {
			kind := "Low"
			if event.IsHigh {
				kind = "High"
			}
			lines = append(lines, fmt.Sprintf("  %s  %s  %.1f ft",
				valueStyle.Render(event.Time.In(date.Location()).Format("3:04 PM")),
				labelStyle.Width(4).Render(kind),
				event.HeightFt))
		}
	}
	if !shown {
		lines = append(lines, mutedStyle.Render("No tide predictions available"))
	}
	return strings.Join(lines, "\n")
}

func directionLabel(d models.TideDirection) string {
	switch d {
	case models.TideRising:
		return successStyle.Render("↑ rising")
	case models.TideFalling:
		return dangerStyle.Render("↓ falling")
	case models.TideSlack:
		return mutedStyle.Render("slack")
	}
	return string(d)
}

// Results renders one row per evaluated window.
func Results(results []engine.MatchResult) string {
	if len(results) == 0 {
		return mutedStyle.Render("No triggers evaluated")
	}

	t := newTable("Spot", "Trigger", "Outcome", "Detail")
	var matched, unknown int
	for _, r := range results {
		detail := r.Reason
		if r.Outcome == engine.OutcomeMatched {
			detail = conditions(r.Snapshot)
			matched++
		}
		if r.Outcome == engine.OutcomeUnknown {
			unknown++
			if r.Err != nil {
				detail = r.Err.Error()
			}
		}
		if r.Stale {
			detail += " (stale tide)"
		}
		t.Row(r.SpotID, r.TriggerID, outcomeLabel(r.Outcome), detail)
	}

	summary := mutedStyle.Render(fmt.Sprintf("%d evaluated, %d matched, %d unknown", len(results), matched, unknown))
	return t.String() + "\n" + summary
}

func outcomeLabel(o engine.Outcome) string {
	switch o {
	case engine.OutcomeMatched:
		return successStyle.Render("✓ matched")
	case engine.OutcomeUnknown:
		return warningStyle.Render("? unknown")
	}
	return mutedStyle.Render("no match")
}

func conditions(s models.ConditionSnapshot) string {
	wind := "wind n/a"
	if !s.WindMissing {
		wind = fmt.Sprintf("wind %.0f mph from %.0f°", s.WindSpeedMph, s.WindDirectionDeg)
	}
	return fmt.Sprintf("%.1f ft @ %.0fs from %.0f°, %s, tide %.1f ft %s",
		s.HeightFt, s.PeriodSec, s.SwellDirectionDeg, wind,
		s.TideHeightFt, s.TideDirection)
}
