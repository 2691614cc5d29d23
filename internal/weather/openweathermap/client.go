package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ykhoma/weather-ingest/internal/config"
	"github.com/ykhoma/weather-ingest/internal/weather"
	"github.com/ykhoma/weather-ingest/internal/weather/types"
)

// Client fetches the current observation for one fixed coordinate from the
// OpenWeatherMap current-weather endpoint.
type Client struct {
	apiKey string
	lat    string
	lon    string
	apiURL string
	client weather.HTTPClient
	logger *zap.Logger
}

func NewClient(cfg *config.Config, httpClient weather.HTTPClient, logger *zap.Logger) *Client {
	return &Client{
		apiKey: cfg.APIKey,
		lat:    cfg.Latitude,
		lon:    cfg.Longitude,
		apiURL: cfg.WeatherURL,
		client: httpClient,
		logger: logger,
	}
}

// FetchCurrent issues the single GET of a run. A transport failure, a non-200
// status and an undecodable body are all the same terminal outcome; nothing
// here retries. The response body is returned undecoded beyond JSON — field
// extraction is the normalizer's job.
func (c *Client) FetchCurrent(ctx context.Context) (types.RawObservation, error) {
	url := fmt.Sprintf(
		"%s?lat=%s&lon=%s&appid=%s&units=metric&lang=en",
		c.apiURL, c.lat, c.lon, c.apiKey,
	)

	c.logger.Info("fetching current weather",
		zap.String("lat", c.lat),
		zap.String("lon", c.lon),
	)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("openweathermap: failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openweathermap: HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"openweathermap: unexpected status %d %s",
			resp.StatusCode, http.StatusText(resp.StatusCode),
		)
	}

	var raw types.RawObservation
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("openweathermap: JSON decode error: %w", err)
	}

	c.logger.Info("successfully fetched current weather",
		zap.Duration("took", time.Since(start)),
	)
	return raw, nil
}
