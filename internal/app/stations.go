package app

import (
	"context"
	"fmt"

	"github.com/ngmaloney/swellwatch/internal/circular"
	"github.com/ngmaloney/swellwatch/internal/models"
	"github.com/ngmaloney/swellwatch/internal/stations"
	"github.com/ngmaloney/swellwatch/internal/ui"
)

// ProvisionOptions configures Provision.
type ProvisionOptions struct {
	Force bool
	// Shapefile, when set, receives a copy of the catalog.
	Shapefile string
}

// Provision builds the SQLite station catalog from NOAA metadata.
func (a *App) Provision(ctx context.Context, opts ProvisionOptions) error {
	dbPath := a.Config.Catalog.DBPath
	count, err := stations.Provision(ctx, dbPath, stations.ProvisionOptions{
		MDAPIURL: a.Config.Upstream.MDAPIURL,
		NDBCURL:  a.Config.Upstream.NDBCURL,
		Client:   a.baseClient("catalog"),
		Logger:   a.Logger,
		Force:    opts.Force,
	})
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Fprintf(a.Out, "Station catalog %s already provisioned (use --force to rebuild)\n", dbPath)
	} else {
		fmt.Fprintf(a.Out, "Stored %d stations in %s\n", count, dbPath)
	}

	if opts.Shapefile == "" {
		return nil
	}
	list, err := stations.SQLiteCatalog{Path: dbPath}.Load(ctx)
	if err != nil {
		return err
	}
	if err := stations.ExportShapefile(opts.Shapefile, list); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Exported %d stations to %s\n", len(list), opts.Shapefile)
	return nil
}

// NearestOptions configures Nearest.
type NearestOptions struct {
	Lat, Lon float64
	Kind     string
	Limit    int
	// MaxMiles of zero uses the configured search radius.
	MaxMiles float64
}

// Nearest prints the stations closest to a point.
func (a *App) Nearest(ctx context.Context, opts NearestOptions) error {
	point, err := models.NewGeoPoint(opts.Lat, opts.Lon)
	if err != nil {
		return err
	}
	kind, ok := models.ParseStationKind(opts.Kind)
	if !ok {
		return models.InvalidRangef("unknown station kind %q", opts.Kind)
	}
	maxMiles := opts.MaxMiles
	if maxMiles <= 0 {
		maxMiles = a.Config.Matching.SearchRadiusMiles
	}

	c, err := a.build(ctx)
	if err != nil {
		return err
	}
	neighbors := c.engine.FindNearestStations(point, kind, opts.Limit, maxMiles)
	fmt.Fprintln(a.Out, ui.Stations(fmt.Sprintf("Stations within %.0f mi of %.4f, %.4f", maxMiles, point.Lat, point.Lon), neighbors))
	return nil
}

// RankOptions configures Rank.
type RankOptions struct {
	Lat, Lon float64
	// Exposure is the arc the spot faces; nil ranks by distance only.
	Exposure *circular.Range
	Limit    int
}

// Rank prints candidate stations for a spot in recommendation order.
func (a *App) Rank(ctx context.Context, opts RankOptions) error {
	point, err := models.NewGeoPoint(opts.Lat, opts.Lon)
	if err != nil {
		return err
	}
	c, err := a.build(ctx)
	if err != nil {
		return err
	}
	ranked := c.engine.RankStations(point, opts.Exposure, opts.Limit)
	fmt.Fprintln(a.Out, ui.Stations("Recommended stations", ranked))
	return nil
}
