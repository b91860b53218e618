// Package noaa fetches tide predictions from NOAA CO-OPS and buoy
// observations from the National Data Buoy Center.
package noaa

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/ngmaloney/swellwatch/internal/models"
)

// DefaultUserAgent identifies requests to NOAA, which asks clients to
// send a descriptive agent.
const DefaultUserAgent = "swellwatch/1.0"

// RetryPolicy configures retries of 429 and 5xx responses.
type RetryPolicy struct {
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
}

// DefaultRetryPolicy returns the retry settings used for NOAA endpoints.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		MinWait:    250 * time.Millisecond,
		MaxWait:    5 * time.Second,
	}
}

// BaseClient wraps an *http.Client with a circuit breaker and bounded
// retries. All NOAA clients issue requests through it.
type BaseClient struct {
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker[*http.Response]
	retryPolicy RetryPolicy
	userAgent   string
	sleep       func(ctx context.Context, d time.Duration) error
}

// BaseClientOption configures a BaseClient.
type BaseClientOption func(*BaseClient)

// WithSleepFunc overrides the wait between retries. Tests use it to
// avoid real delays.
func WithSleepFunc(fn func(ctx context.Context, d time.Duration) error) BaseClientOption {
	return func(c *BaseClient) {
		c.sleep = fn
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) BaseClientOption {
	return func(c *BaseClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewBaseClient creates a BaseClient. A nil httpClient gets a 30 second
// timeout client.
func NewBaseClient(httpClient *http.Client, breakerName string, retryPolicy RetryPolicy, opts ...BaseClientOption) *BaseClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not an upstream fault.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	bc := &BaseClient{
		client:      httpClient,
		breaker:     cb,
		retryPolicy: retryPolicy,
		userAgent:   DefaultUserAgent,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(bc)
	}
	return bc
}

// Get issues a GET request. Any response other than 429 or 5xx is
// returned to the caller, who must close the body. Failures are returned
// as *models.AppError: UpstreamTimeout when the context deadline passed,
// UpstreamError otherwise.
func (c *BaseClient) Get(ctx context.Context, url string) (*http.Response, error) {
	var lastResp *http.Response
	var lastErr error

	maxAttempts := 1 + c.retryPolicy.MaxRetries
	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, models.NewAppError(models.ErrCodeInternalUnexpected, "failed to create request", err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			r, doErr := c.client.Do(req)
			if doErr != nil {
				return nil, doErr
			}
			if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
				return r, fmt.Errorf("upstream returned %d", r.StatusCode)
			}
			return r, nil
		})
		if err == nil {
			return resp, nil
		}

		lastErr = err
		lastResp = resp

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if attempt == maxAttempts-1 {
			break
		}

		wait := c.computeBackoff(attempt, resp)
		if resp != nil {
			resp.Body.Close()
			lastResp = nil
		}
		if err := c.sleep(ctx, wait); err != nil {
			lastErr = err
			break
		}
	}

	if lastResp != nil {
		lastResp.Body.Close()
	}
	return nil, c.mapError(ctx, lastResp, lastErr)
}

// computeBackoff honors a numeric Retry-After header, else uses
// exponential backoff with jitter in [MinWait, MaxWait].
func (c *BaseClient) computeBackoff(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds > 0 {
			return min(time.Duration(seconds)*time.Second, c.retryPolicy.MaxWait)
		}
	}

	base := float64(c.retryPolicy.MinWait) * math.Pow(2, float64(attempt))
	base = math.Min(base, float64(c.retryPolicy.MaxWait))
	minWait := float64(c.retryPolicy.MinWait)
	if base <= minWait {
		return c.retryPolicy.MinWait
	}
	return time.Duration(minWait + rand.Float64()*(base-minWait))
}

func (c *BaseClient) mapError(ctx context.Context, resp *http.Response, err error) *models.AppError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return models.NewAppError(models.ErrCodeUpstreamTimeout, "upstream request timed out", err)
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return models.NewAppError(models.ErrCodeUpstreamError, "circuit breaker is open", err)
	}
	if resp != nil {
		return models.NewAppError(models.ErrCodeUpstreamError,
			fmt.Sprintf("upstream returned %d after retries", resp.StatusCode), err)
	}
	return models.NewAppError(models.ErrCodeUpstreamError, "upstream request failed", err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
