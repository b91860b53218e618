// Package notify hands matched trigger windows off to downstream delivery.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ngmaloney/swellwatch/internal/engine"
	"github.com/ngmaloney/swellwatch/internal/models"
)

// Event announces that a trigger window matched current conditions.
type Event struct {
	ID        uuid.UUID                `json:"id"`
	SpotID    string                   `json:"spot_id"`
	TriggerID string                   `json:"trigger_id"`
	UserID    string                   `json:"user_id,omitempty"`
	Snapshot  models.ConditionSnapshot `json:"snapshot"`
	Stale     bool                     `json:"stale"`
	At        time.Time                `json:"at"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NewEvent builds an event for a matched result.
func NewEvent(result engine.MatchResult, at time.Time) Event {
	return Event{
		ID:        uuid.New(),
		SpotID:    result.SpotID,
		TriggerID: result.TriggerID,
		UserID:    result.UserID,
		Snapshot:  result.Snapshot,
		Stale:     result.Stale,
		At:        at.UTC(),
	}
}

// BatchPublisher is a Publisher that can also send many events in one
// write.
type BatchPublisher interface {
	Publisher
	PublishBatch(ctx context.Context, events []Event) error
}

// PublishMatches publishes an event for every matched result and returns
// how many were sent. Unknown outcomes are logged and skipped. A
// BatchPublisher gets all events in a single write. Otherwise publishing
// continues past individual failures and the first error is returned.
func PublishMatches(ctx context.Context, pub Publisher, results []engine.MatchResult, at time.Time, logger zerolog.Logger) (int, error) {
	var events []Event
	for _, r := range results {
		switch r.Outcome {
		case engine.OutcomeMatched:
			events = append(events, NewEvent(r, at))
		case engine.OutcomeUnknown:
			logger.Info().
				Str("spot_id", r.SpotID).
				Str("trigger_id", r.TriggerID).
				Err(r.Err).
				Msg("conditions unknown, skipping notification")
		}
	}
	if len(events) == 0 {
		return 0, nil
	}

	if batch, ok := pub.(BatchPublisher); ok {
		if err := batch.PublishBatch(ctx, events); err != nil {
			logger.Error().Err(err).Int("events", len(events)).Msg("failed to publish matches")
			return 0, err
		}
		return len(events), nil
	}

	var (
		sent     int
		firstErr error
	)
	for _, event := range events {
		if err := pub.Publish(ctx, event); err != nil {
			logger.Error().Err(err).
				Str("spot_id", event.SpotID).
				Str("trigger_id", event.TriggerID).
				Msg("failed to publish match")
			if firstErr == nil {
				firstErr = err
			}
			if ctx.Err() != nil {
				return sent, ctx.Err()
			}
			continue
		}
		sent++
	}
	return sent, firstErr
}
