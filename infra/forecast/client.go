// Package forecast fetches hourly city temperature forecasts over HTTP and
// publishes them for the scheduler.
package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/kilianp07/carheater/core/forecast"
	"github.com/kilianp07/carheater/infra/logger"
)

const DefaultURL = "https://www.tuuleeko.fi/fmiproxy/city-forecast"

// Config defines the forecast source and polling policy.
type Config struct {
	URL                 string `json:"url"`
	City                string `json:"city"`
	PollIntervalSeconds int    `json:"poll_interval_seconds"`
	TimeoutSeconds      int    `json:"timeout_seconds"`
	RetryMax            int    `json:"retry_max"`
}

func (c *Config) SetDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.City == "" {
		c.City = "espoo"
	}
	if c.PollIntervalSeconds == 0 {
		c.PollIntervalSeconds = 1800
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
	if c.RetryMax == 0 {
		c.RetryMax = 3
	}
}

func (c Config) Validate() error {
	if _, err := url.ParseRequestURI(c.URL); err != nil {
		return fmt.Errorf("forecast url: %w", err)
	}
	if c.City == "" {
		return fmt.Errorf("forecast city is required")
	}
	if c.PollIntervalSeconds < 60 {
		return fmt.Errorf("poll_interval_seconds must be at least 60")
	}
	if c.TimeoutSeconds <= 0 || c.RetryMax < 0 {
		return fmt.Errorf("timeout_seconds must be positive and retry_max not negative")
	}
	return nil
}

// PollInterval is the configured interval as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// hourlyForecast is one item of the upstream JSON array. Fields other than
// temperature and date are ignored.
type hourlyForecast struct {
	Temperature *float64 `json:"temperature"`
	Date        string   `json:"date"`
}

// Client fetches forecasts with retries on transient failures.
type Client struct {
	http     *retryablehttp.Client
	endpoint string
	log      logger.Logger
	now      func() time.Time
}

func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("forecast url: %w", err)
	}
	q := u.Query()
	q.Set("city", cfg.City)
	u.RawQuery = q.Encode()

	log := logger.New("forecast")
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	rc.Logger = logger.Leveled{L: log}
	return &Client{http: rc, endpoint: u.String(), log: log, now: time.Now}, nil
}

// Fetch downloads the forecast and returns its samples sorted by time.
// Items with a missing temperature or an unparseable date are skipped.
func (c *Client) Fetch(ctx context.Context) (forecast.Batch, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return forecast.Batch{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return forecast.Batch{}, fmt.Errorf("fetch forecast: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return forecast.Batch{}, fmt.Errorf("fetch forecast: unexpected status %s", resp.Status)
	}

	var items []hourlyForecast
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&items); err != nil {
		return forecast.Batch{}, fmt.Errorf("decode forecast: %w", err)
	}
	return forecast.Batch{Samples: c.samples(items), FetchedAt: c.now().UTC()}, nil
}

func (c *Client) samples(items []hourlyForecast) []forecast.Sample {
	out := make([]forecast.Sample, 0, len(items))
	skipped := 0
	for _, it := range items {
		ts, err := time.Parse(time.RFC3339, it.Date)
		if err != nil || it.Temperature == nil {
			skipped++
			continue
		}
		out = append(out, forecast.Sample{Temperature: *it.Temperature, Timestamp: ts.UTC()})
	}
	if skipped > 0 {
		c.log.Warnf("skipped %d malformed forecast items", skipped)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}
