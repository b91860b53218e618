package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ngmaloney/swellwatch/internal/models"
	"github.com/ngmaloney/swellwatch/internal/ui"
)

// TideOptions configures Tide.
type TideOptions struct {
	StationID string
	// At defaults to now.
	At time.Time
}

// Tide prints the interpolated tide at a station. It does not need the
// station catalog.
func (a *App) Tide(ctx context.Context, opts TideOptions) error {
	at := opts.At
	if at.IsZero() {
		at = a.Clock.Now()
	}

	interp := a.newInterpolator()
	state, stale, err := interp.GetTideState(ctx, opts.StationID, at)
	if err != nil {
		return err
	}

	var preds []models.TidePrediction
	if series, ok := interp.Series(opts.StationID); ok {
		preds = series.Predictions
	}
	fmt.Fprintln(a.Out, ui.Tide(opts.StationID, state, stale, preds))
	return nil
}
