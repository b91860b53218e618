// Package app wires configuration into the engine and its collaborators
// for the CLI commands.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ngmaloney/swellwatch/internal/config"
	"github.com/ngmaloney/swellwatch/internal/engine"
	"github.com/ngmaloney/swellwatch/internal/geo"
	"github.com/ngmaloney/swellwatch/internal/models"
	"github.com/ngmaloney/swellwatch/internal/noaa"
	"github.com/ngmaloney/swellwatch/internal/notify"
	"github.com/ngmaloney/swellwatch/internal/ranking"
	"github.com/ngmaloney/swellwatch/internal/stations"
	"github.com/ngmaloney/swellwatch/internal/tides"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	// Out receives command output. Logs go to the logger.
	Out   io.Writer
	Clock models.Clock

	httpClient *http.Client
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config:     cfg,
		Logger:     logger.With().Str("component", "app").Logger(),
		Out:        os.Stdout,
		Clock:      models.RealClock{},
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *App) baseClient(name string) *noaa.BaseClient {
	policy := noaa.DefaultRetryPolicy()
	policy.MaxRetries = a.Config.Upstream.MaxRetries
	return noaa.NewBaseClient(a.httpClient, name, policy, noaa.WithUserAgent(a.Config.Upstream.UserAgent))
}

// catalog returns the station loader for the configured sources. A
// shapefile alone is enough when the SQLite catalog was never provisioned.
func (a *App) catalog() (stations.Loader, error) {
	cfg := a.Config.Catalog
	needs, err := stations.NeedsProvisioning(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	switch {
	case needs && cfg.Shapefile == "":
		return nil, fmt.Errorf("station catalog %s is empty; run `swellwatch provision` first", cfg.DBPath)
	case needs:
		return stations.ShapefileCatalog{Path: cfg.Shapefile}, nil
	case cfg.Shapefile != "":
		return stations.Combined(stations.SQLiteCatalog{Path: cfg.DBPath}, stations.ShapefileCatalog{Path: cfg.Shapefile}), nil
	}
	return stations.SQLiteCatalog{Path: cfg.DBPath}, nil
}

func (a *App) loadIndex(ctx context.Context) (*geo.Index, error) {
	loader, err := a.catalog()
	if err != nil {
		return nil, err
	}
	list, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading station catalog: %w", err)
	}
	idx := geo.NewIndex(list)
	a.Logger.Debug().Int("stations", idx.Len()).Msg("station index built")
	return idx, nil
}

func (a *App) newInterpolator() *tides.Interpolator {
	client := noaa.NewTideClient(a.baseClient("coops"), noaa.WithTidesURL(a.Config.Upstream.TidesURL))
	return tides.NewInterpolator(client,
		tides.WithClock(a.Clock),
		tides.WithTTL(a.Config.Tides.CacheTTL),
		tides.WithWindowHours(a.Config.Tides.WindowHours),
		tides.WithFetchTimeout(a.Config.Tides.FetchTimeout),
		tides.WithLogger(a.Logger),
	)
}

func (a *App) newRanker(index *geo.Index) *ranking.Ranker {
	m := a.Config.Matching
	return ranking.New(index, ranking.Weights{
		BandMiles:      m.RankBandMiles,
		ExposureWeight: m.RankExposureWeight,
	}, m.SearchRadiusMiles)
}

type components struct {
	index  *geo.Index
	tides  *tides.Interpolator
	engine *engine.Engine
}

func (a *App) build(ctx context.Context) (*components, error) {
	index, err := a.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	interp := a.newInterpolator()
	buoys := noaa.NewBuoyClient(a.baseClient("ndbc"),
		noaa.WithNDBCURL(a.Config.Upstream.NDBCURL),
		noaa.WithBuoyClock(a.Clock))

	eng := engine.New(index, interp, buoys, a.newRanker(index), a.Logger,
		engine.WithSearchRadius(a.Config.Matching.SearchRadiusMiles),
		engine.WithConcurrency(a.Config.Matching.EvalConcurrency))
	return &components{index: index, tides: interp, engine: eng}, nil
}

// newPublisher returns the match publisher and a closer for it.
func (a *App) newPublisher() (notify.Publisher, func() error) {
	k := a.Config.Kafka
	if !k.Enabled() {
		a.Logger.Debug().Msg("no kafka brokers configured; matches are logged")
		return notify.NewLogPublisher(a.Logger), func() error { return nil }
	}
	p := notify.NewKafkaPublisher(k.Brokers, k.MatchesTopic)
	return p, p.Close
}
