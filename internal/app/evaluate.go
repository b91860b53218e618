package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/ngmaloney/swellwatch/internal/engine"
	"github.com/ngmaloney/swellwatch/internal/notify"
	"github.com/ngmaloney/swellwatch/internal/scheduler"
	"github.com/ngmaloney/swellwatch/internal/spots"
	"github.com/ngmaloney/swellwatch/internal/ui"
)

// EvaluateOptions configures Evaluate and Watch.
type EvaluateOptions struct {
	// SpotsFile is a JSON array of spots and their triggers.
	SpotsFile string
}

func (a *App) loadSpots(file string) ([]engine.SpotTriggers, error) {
	if file == "" {
		return nil, errors.New("no spots file given; pass --spots")
	}
	defs, err := spots.LoadFile(file)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("no spots configured in %s", file)
	}
	return spots.Resolve(defs)
}

// Evaluate runs one evaluation cycle, prints the outcomes and publishes
// matches.
func (a *App) Evaluate(ctx context.Context, opts EvaluateOptions) error {
	list, err := a.loadSpots(opts.SpotsFile)
	if err != nil {
		return err
	}
	c, err := a.build(ctx)
	if err != nil {
		return err
	}
	pub, closePub := a.newPublisher()
	defer closePub()

	results, err := a.cycle(ctx, c.engine, pub, list, a.Clock.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, ui.Results(results))
	return nil
}

func (a *App) cycle(ctx context.Context, eng *engine.Engine, pub notify.Publisher, list []engine.SpotTriggers, at time.Time) ([]engine.MatchResult, error) {
	results, err := eng.EvaluateAll(ctx, list, at)
	if err != nil {
		return nil, err
	}
	sent, err := notify.PublishMatches(ctx, pub, results, at, a.Logger)
	if err != nil {
		// Delivery failures do not invalidate the evaluation.
		a.Logger.Error().Err(err).Int("published", sent).Msg("some matches were not published")
	}
	a.Logger.Info().
		Int("spots", len(list)).
		Int("results", len(results)).
		Int("published", sent).
		Msg("evaluation cycle complete")
	return results, nil
}

// Watch evaluates every configured interval until interrupted. Spots are
// read once at startup.
func (a *App) Watch(ctx context.Context, opts EvaluateOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	list, err := a.loadSpots(opts.SpotsFile)
	if err != nil {
		return err
	}
	c, err := a.build(ctx)
	if err != nil {
		return err
	}
	pub, closePub := a.newPublisher()
	defer closePub()

	sched, err := scheduler.New(scheduler.Options{
		Interval:       a.Config.Watch.Interval,
		AlignToStart:   true,
		RunImmediately: true,
	}, a.Logger)
	if err != nil {
		return err
	}

	a.Logger.Info().Int("spots", len(list)).Dur("interval", a.Config.Watch.Interval).Msg("starting watch")
	err = sched.Run(ctx, func(ctx context.Context, bucket time.Time) error {
		results, err := a.cycle(ctx, c.engine, pub, list, a.Clock.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(a.Out, ui.Results(results))
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watch terminated with error")
		return err
	}

	a.Logger.Info().Msg("watch stopped")
	return nil
}
