package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventsForDay(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")

	tests := []struct {
		name   string
		events []TidePrediction
		date   time.Time
		want   int // number of events expected
	}{
		{
			name: "typical day with 2 highs and 2 lows",
			events: []TidePrediction{
				{Time: time.Date(2025, 11, 27, 6, 30, 0, 0, loc), HeightFt: 0.5},
				{Time: time.Date(2025, 11, 27, 12, 45, 0, 0, loc), HeightFt: 5.2, IsHigh: true},
				{Time: time.Date(2025, 11, 27, 18, 15, 0, 0, loc), HeightFt: 0.8},
				{Time: time.Date(2025, 11, 28, 0, 30, 0, 0, loc), HeightFt: 5.0, IsHigh: true},
			},
			date: time.Date(2025, 11, 27, 0, 0, 0, 0, loc),
			want: 3,
		},
		{
			name: "no events for given day",
			events: []TidePrediction{
				{Time: time.Date(2025, 11, 26, 12, 0, 0, 0, loc), HeightFt: 5.0, IsHigh: true},
				{Time: time.Date(2025, 11, 28, 12, 0, 0, 0, loc), HeightFt: 5.0, IsHigh: true},
			},
			date: time.Date(2025, 11, 27, 0, 0, 0, 0, loc),
			want: 0,
		},
		{
			name: "event exactly at midnight belongs to that day",
			events: []TidePrediction{
				{Time: time.Date(2025, 11, 27, 0, 0, 0, 0, loc), HeightFt: 5.0, IsHigh: true},
			},
			date: time.Date(2025, 11, 27, 15, 0, 0, 0, loc),
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EventsForDay(tt.events, tt.date)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestParseTideDirection(t *testing.T) {
	tests := []struct {
		in     string
		want   TideDirection
		wantOK bool
	}{
		{"", TideAny, true},
		{"any", TideAny, true},
		{"rising", TideRising, true},
		{"incoming", TideRising, true},
		{"falling", TideFalling, true},
		{"outgoing", TideFalling, true},
		{"slack", TideAny, false},
		{"sideways", TideAny, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTideDirection(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestNewSnapshot(t *testing.T) {
	obs := Observation{HeightFt: 4.5, PeriodSec: 11, SwellDirectionDeg: 160, WindSpeedMph: 8, WindDirectionDeg: 270}
	tide := TideState{HeightFt: 2.0, Direction: TideRising}

	got := NewSnapshot(obs, tide)

	assert.Equal(t, ConditionSnapshot{
		HeightFt:          4.5,
		PeriodSec:         11,
		SwellDirectionDeg: 160,
		WindSpeedMph:      8,
		WindDirectionDeg:  270,
		TideHeightFt:      2.0,
		TideDirection:     TideRising,
	}, got)
}
