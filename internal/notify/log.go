package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogPublisher records events in the log. Used when no brokers are
// configured.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With().Str("component", "notify").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	snap := event.Snapshot
	p.logger.Info().
		Str("event_id", event.ID.String()).
		Str("spot_id", event.SpotID).
		Str("trigger_id", event.TriggerID).
		Str("user_id", event.UserID).
		Float64("height_ft", snap.HeightFt).
		Float64("period_sec", snap.PeriodSec).
		Float64("swell_direction", snap.SwellDirectionDeg).
		Float64("wind_speed_mph", snap.WindSpeedMph).
		Float64("wind_direction", snap.WindDirectionDeg).
		Bool("wind_missing", snap.WindMissing).
		Float64("tide_height_ft", snap.TideHeightFt).
		Str("tide_direction", string(snap.TideDirection)).
		Bool("stale", event.Stale).
		Msg("trigger matched")
	return nil
}
