package noaa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ngmaloney/swellwatch/internal/models"
)

// DefaultTidesURL is the CO-OPS data API endpoint.
const DefaultTidesURL = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"

const coopsTimeLayout = "2006-01-02 15:04"

// TideClient fetches high/low tide predictions from NOAA CO-OPS.
type TideClient struct {
	baseURL  string
	base     *BaseClient
	location *time.Location
}

// TideClientOption configures a TideClient.
type TideClientOption func(*TideClient)

// WithTidesURL overrides DefaultTidesURL.
func WithTidesURL(u string) TideClientOption {
	return func(c *TideClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithLocation requests station-local times (lst_ldt) and parses them in
// loc. Without it times are requested and parsed as GMT.
func WithLocation(loc *time.Location) TideClientOption {
	return func(c *TideClient) {
		c.location = loc
	}
}

// NewTideClient creates a tide client issuing requests through base.
func NewTideClient(base *BaseClient, opts ...TideClientOption) *TideClient {
	c := &TideClient{baseURL: DefaultTidesURL, base: base}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves predictions for rangeHours starting at begin.
func (c *TideClient) Fetch(ctx context.Context, stationID string, begin time.Time, rangeHours int) ([]models.TidePrediction, error) {
	loc, timeZone := time.UTC, "gmt"
	if c.location != nil {
		loc, timeZone = c.location, "lst_ldt"
	}

	params := url.Values{}
	params.Add("begin_date", begin.In(loc).Format("20060102 15:04"))
	params.Add("range", strconv.Itoa(rangeHours))
	params.Add("station", stationID)
	params.Add("product", "predictions")
	params.Add("datum", "MLLW") // Mean Lower Low Water
	params.Add("time_zone", timeZone)
	params.Add("interval", "hilo") // High and low tides only
	params.Add("units", "english") // Feet
	params.Add("format", "json")
	params.Add("application", "swellwatch")

	resp, err := c.base.Get(ctx, fmt.Sprintf("%s?%s", c.baseURL, params.Encode()))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, models.NewAppError(models.ErrCodeUpstreamError,
			fmt.Sprintf("tides API returned status %d", resp.StatusCode), nil)
	}

	var tideResp tideResponse
	if err := json.NewDecoder(resp.Body).Decode(&tideResp); err != nil {
		return nil, models.NewAppError(models.ErrCodeUpstreamError, "failed to decode tides response", err)
	}
	if tideResp.Error != nil {
		return nil, models.NewAppError(models.ErrCodeUpstreamError, tideResp.Error.Message, nil).
			WithDetails(map[string]any{"station": stationID})
	}

	predictions := make([]models.TidePrediction, 0, len(tideResp.Predictions))
	for _, pred := range tideResp.Predictions {
		eventTime, err := time.ParseInLocation(coopsTimeLayout, pred.Time, loc)
		if err != nil {
			continue // Skip invalid times
		}

		// NOAA returns heights as strings
		height, err := strconv.ParseFloat(pred.Height, 64)
		if err != nil {
			continue
		}

		predictions = append(predictions, models.TidePrediction{
			Time:     eventTime,
			HeightFt: height,
			IsHigh:   pred.Type == "H",
		})
	}

	return predictions, nil
}

// Internal types for NOAA CO-OPS API responses

type tideResponse struct {
	Predictions []struct {
		Time   string `json:"t"`
		Height string `json:"v"`    // NOAA returns this as string
		Type   string `json:"type"` // "H" or "L"
	} `json:"predictions"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}
