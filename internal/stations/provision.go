package stations

import (
	"context"
	"database/sql"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ngmaloney/swellwatch/internal/database"
	"github.com/ngmaloney/swellwatch/internal/models"
	"github.com/ngmaloney/swellwatch/internal/noaa"
)

// DefaultMDAPIURL is the CO-OPS metadata API.
const DefaultMDAPIURL = "https://api.tidesandcurrents.noaa.gov/mdapi/prod/webapi"

var provisionMu sync.Mutex

// ProvisionOptions configures Provision.
type ProvisionOptions struct {
	MDAPIURL string
	NDBCURL  string
	Client   *noaa.BaseClient
	Logger   zerolog.Logger
	// Force rebuilds the catalog even if the table exists.
	Force bool
}

// NeedsProvisioning checks if the station catalog needs to be provisioned
func NeedsProvisioning(dbPath string) (bool, error) {
	// If file doesn't exist, we need to provision
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return true, nil
	}

	db, err := database.Open(dbPath)
	if err != nil {
		return false, err
	}
	defer db.Close()

	has, err := database.HasTable(db, database.CatalogTable)
	if err != nil {
		return false, err
	}
	return !has, nil
}

// Provision downloads tide stations from CO-OPS and active buoys from
// NDBC and writes them to the catalog at dbPath. It returns the number of
// stations stored, or 0 when the catalog already existed.
func Provision(ctx context.Context, dbPath string, opts ProvisionOptions) (int, error) {
	provisionMu.Lock()
	defer provisionMu.Unlock()

	if opts.MDAPIURL == "" {
		opts.MDAPIURL = DefaultMDAPIURL
	}
	if opts.NDBCURL == "" {
		opts.NDBCURL = noaa.DefaultNDBCURL
	}
	if opts.Client == nil {
		opts.Client = noaa.NewBaseClient(nil, "catalog", noaa.DefaultRetryPolicy())
	}
	logger := opts.Logger.With().Str("component", "provision").Logger()

	if !opts.Force {
		needs, err := NeedsProvisioning(dbPath)
		if err != nil {
			return 0, err
		}
		if !needs {
			logger.Debug().Str("path", dbPath).Msg("station catalog already provisioned")
			return 0, nil
		}
	}

	logger.Info().Str("mdapi", opts.MDAPIURL).Str("ndbc", opts.NDBCURL).Msg("downloading station metadata")

	var tideStations, buoys []models.ReferenceStation
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tideStations, err = fetchTideStations(gctx, opts.Client, opts.MDAPIURL)
		if err != nil {
			return fmt.Errorf("fetching tide stations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		buoys, err = fetchBuoys(gctx, opts.Client, opts.NDBCURL)
		if err != nil {
			return fmt.Errorf("fetching buoys: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	db, err := database.Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	count, err := buildCatalog(ctx, db, append(tideStations, buoys...), logger)
	if err != nil {
		return 0, fmt.Errorf("building catalog: %w", err)
	}

	logger.Info().
		Int("tide_stations", len(tideStations)).
		Int("buoys", len(buoys)).
		Int("stored", count).
		Str("path", dbPath).
		Msg("station catalog provisioned")
	return count, nil
}

// flexFloat decodes a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

// mdapiStation is a CO-OPS metadata API station.
type mdapiStation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	State     string    `json:"state"`
	Latitude  flexFloat `json:"lat"`
	Longitude flexFloat `json:"lng"`
}

type mdapiResponse struct {
	Stations []mdapiStation `json:"stations"`
}

// fetchTideStations fetches all tide prediction stations from the MDAPI
func fetchTideStations(ctx context.Context, client *noaa.BaseClient, baseURL string) ([]models.ReferenceStation, error) {
	resp, err := client.Get(ctx, fmt.Sprintf("%s/stations.json?type=tidepredictions", baseURL))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NOAA MDAPI returned status %d", resp.StatusCode)
	}

	var stationResp mdapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&stationResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	result := make([]models.ReferenceStation, 0, len(stationResp.Stations))
	for _, s := range stationResp.Stations {
		station, ok := newStation(string(models.KindTideStation), s.ID, s.Name, s.State, "",
			float64(s.Latitude), float64(s.Longitude))
		if ok {
			result = append(result, station)
		}
	}
	return result, nil
}

// ndbcStations is NDBC's activestations.xml.
type ndbcStations struct {
	Stations []struct {
		ID   string  `xml:"id,attr"`
		Name string  `xml:"name,attr"`
		Lat  float64 `xml:"lat,attr"`
		Lon  float64 `xml:"lon,attr"`
		Type string  `xml:"type,attr"`
		Met  string  `xml:"met,attr"`
	} `xml:"station"`
}

// fetchBuoys fetches active moored buoys that report meteorological data.
func fetchBuoys(ctx context.Context, client *noaa.BaseClient, baseURL string) ([]models.ReferenceStation, error) {
	resp, err := client.Get(ctx, fmt.Sprintf("%s/activestations.xml", strings.TrimRight(baseURL, "/")))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NDBC returned status %d", resp.StatusCode)
	}

	var doc ndbcStations
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding active stations: %w", err)
	}

	var result []models.ReferenceStation
	for _, s := range doc.Stations {
		if s.Type != "buoy" || s.Met != "y" {
			continue
		}
		station, ok := newStation(string(models.KindBuoy), strings.ToUpper(s.ID), s.Name, "", "", s.Lat, s.Lon)
		if ok {
			result = append(result, station)
		}
	}
	return result, nil
}

// buildCatalog replaces the catalog contents with stations in one
// transaction.
func buildCatalog(ctx context.Context, db *sql.DB, stations []models.ReferenceStation, logger zerolog.Logger) (int, error) {
	if err := database.EnsureCatalogSchema(db); err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // Rollback on error

	if _, err := tx.ExecContext(ctx, "DELETE FROM reference_stations"); err != nil {
		return 0, fmt.Errorf("clearing catalog: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO reference_stations
		(kind, id, name, region, exposure, latitude, longitude) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for _, s := range stations {
		_, err = stmt.ExecContext(ctx, string(s.Kind), s.ID, s.Name, s.Region, string(s.Exposure), s.Location.Lat, s.Location.Lon)
		if err != nil {
			logger.Warn().Err(err).Str("station", s.ID).Msg("error inserting station")
			continue
		}
		count++
		if count%500 == 0 {
			logger.Debug().Int("count", count).Msg("inserted stations")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return count, nil
}
