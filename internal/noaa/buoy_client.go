package noaa

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ngmaloney/swellwatch/internal/models"
)

// DefaultNDBCURL is the National Data Buoy Center host.
const DefaultNDBCURL = "https://www.ndbc.noaa.gov"

// DefaultMaxObservationAge is how old the newest wave record may be.
const DefaultMaxObservationAge = 3 * time.Hour

const ndbcMissing = "MM"

// BuoyClient reads the latest standard meteorological record of an NDBC
// station (the realtime2 text feed).
type BuoyClient struct {
	baseURL string
	base    *BaseClient
	clock   models.Clock
	maxAge  time.Duration
}

// BuoyClientOption configures a BuoyClient.
type BuoyClientOption func(*BuoyClient)

// WithNDBCURL overrides DefaultNDBCURL.
func WithNDBCURL(u string) BuoyClientOption {
	return func(c *BuoyClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithBuoyClock sets the clock used for the age check.
func WithBuoyClock(clock models.Clock) BuoyClientOption {
	return func(c *BuoyClient) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithMaxAge overrides DefaultMaxObservationAge.
func WithMaxAge(d time.Duration) BuoyClientOption {
	return func(c *BuoyClient) {
		if d > 0 {
			c.maxAge = d
		}
	}
}

// NewBuoyClient creates a buoy client issuing requests through base.
func NewBuoyClient(base *BaseClient, opts ...BuoyClientOption) *BuoyClient {
	c := &BuoyClient{
		baseURL: DefaultNDBCURL,
		base:    base,
		clock:   models.RealClock{},
		maxAge:  DefaultMaxObservationAge,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Observe returns the most recent wave and wind observation for a buoy.
func (c *BuoyClient) Observe(ctx context.Context, stationID string) (models.Observation, error) {
	resp, err := c.base.Get(ctx, fmt.Sprintf("%s/data/realtime2/%s.txt", c.baseURL, strings.ToUpper(stationID)))
	if err != nil {
		return models.Observation{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.Observation{}, models.NewAppError(models.ErrCodeStationNotFound,
			fmt.Sprintf("no realtime data for buoy %s", stationID), nil)
	case resp.StatusCode != http.StatusOK:
		return models.Observation{}, models.NewAppError(models.ErrCodeUpstreamError,
			fmt.Sprintf("NDBC returned status %d", resp.StatusCode), nil)
	}

	obs, err := parseRealtime(resp.Body)
	if err != nil {
		return models.Observation{}, err
	}
	obs.StationID = stationID

	if age := c.clock.Now().Sub(obs.ObservedAt); age > c.maxAge {
		return models.Observation{}, models.NewAppError(models.ErrCodeDataUnavailable,
			fmt.Sprintf("latest wave record for buoy %s is %s old", stationID, age.Truncate(time.Minute)), nil)
	}
	return obs, nil
}

// parseRealtime picks wave fields from the newest row that has height,
// period and direction, and wind from the newest row with both speed and
// direction. Rows are newest first.
func parseRealtime(r io.Reader) (models.Observation, error) {
	var (
		columns  map[string]int
		obs      models.Observation
		haveWave bool
		haveWind bool
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			// The first comment line names the columns; the second holds units.
			if columns == nil {
				columns = make(map[string]int)
				for i, name := range strings.Fields(strings.TrimLeft(line, "#")) {
					columns[name] = i
				}
			}
			continue
		}
		if columns == nil {
			return models.Observation{}, models.NewAppError(models.ErrCodeUpstreamError, "NDBC feed has no header", nil)
		}

		row := ndbcRow{fields: strings.Fields(line), columns: columns}
		observedAt, ok := row.time()
		if !ok {
			continue
		}

		if !haveWave {
			height, hok := row.float("WVHT")
			period, pok := row.float("DPD")
			if !pok {
				period, pok = row.float("APD")
			}
			direction, dok := row.float("MWD")
			if hok && pok && dok {
				obs.HeightFt = height * models.FeetPerMeter
				obs.PeriodSec = period
				obs.SwellDirectionDeg = direction
				obs.ObservedAt = observedAt
				haveWave = true
			}
		}

		if !haveWind {
			speed, sok := row.float("WSPD")
			dir, dok := row.float("WDIR")
			if sok && dok {
				obs.WindSpeedMph = speed * models.MphPerMeterPerSec
				obs.WindDirectionDeg = dir
				haveWind = true
			}
		}

		if haveWave && haveWind {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return models.Observation{}, models.NewAppError(models.ErrCodeUpstreamError, "failed to read NDBC feed", err)
	}

	if !haveWave {
		return models.Observation{}, models.NewAppError(models.ErrCodeDataUnavailable,
			"no complete wave record in NDBC feed", nil)
	}
	obs.WindMissing = !haveWind
	return obs, nil
}

type ndbcRow struct {
	fields  []string
	columns map[string]int
}

func (r ndbcRow) value(name string) (string, bool) {
	i, ok := r.columns[name]
	if !ok || i >= len(r.fields) || r.fields[i] == ndbcMissing {
		return "", false
	}
	return r.fields[i], true
}

func (r ndbcRow) float(name string) (float64, bool) {
	v, ok := r.value(name)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (r ndbcRow) time() (time.Time, bool) {
	parts := make([]int, 0, 5)
	for _, name := range []string{"YY", "MM", "DD", "hh", "mm"} {
		v, ok := r.value(name)
		if !ok {
			return time.Time{}, false
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return time.Time{}, false
		}
		parts = append(parts, n)
	}
	return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], 0, 0, time.UTC), true
}
