// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/aerographus/internal/breaker"
	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/metrics"
	"github.com/tomtom215/aerographus/internal/models"
)

const defaultBaseURL = "https://api.openweathermap.org"

// maxResponseSize caps upstream bodies. OpenWeather responses are a few
// KB; anything bigger is a broken upstream, not data.
const maxResponseSize = 4 << 20

// Client is the raw OpenWeather HTTP client. One rate limiter and one
// circuit breaker cover every endpoint; OpenWeather quotas and outages
// apply to the whole key, not per endpoint.
type Client struct {
	cfg     *config.WeatherConfig
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *breaker.Breaker[[]byte]
}

// NewClient creates the OpenWeather client from config. A missing API
// key is not an error here; calls fail with ErrNoAPIKey instead so the
// rest of the service can start without one.
func NewClient(cfg *config.WeatherConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Limit(5)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 10
	}

	return &Client{
		cfg:     cfg,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		breaker: breaker.New[[]byte]("openweather"),
	}
}

// Geocode resolves a free-text place name to coordinates. An empty
// result slice means OpenWeather found no match.
func (c *Client) Geocode(ctx context.Context, query string, limit int) ([]models.GeocodeResult, error) {
	if limit <= 0 {
		limit = 1
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/geo/1.0/direct", "geocode", params)
	if err != nil {
		return nil, err
	}

	var entries []geoEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	results := make([]models.GeocodeResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, models.GeocodeResult{
			Name:    e.Name,
			Country: e.Country,
			State:   e.State,
			Lat:     e.Lat,
			Lon:     e.Lon,
		})
	}
	return results, nil
}

// ReverseGeocode resolves coordinates to place names, nearest first.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) ([]models.GeocodeResult, error) {
	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("limit", "5")

	body, err := c.get(ctx, "/geo/1.0/reverse", "reverse_geocode", params)
	if err != nil {
		return nil, err
	}

	var entries []geoEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode reverse geocode response: %w", err)
	}

	results := make([]models.GeocodeResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, models.GeocodeResult{
			Name:    e.Name,
			Country: e.Country,
			State:   e.State,
			Lat:     e.Lat,
			Lon:     e.Lon,
		})
	}
	return results, nil
}

// PollutionSample is one timestamped set of component concentrations.
type PollutionSample struct {
	Time       time.Time
	Components models.PollutantConcentrations
}

// AirPollution returns the current component concentrations at a point.
func (c *Client) AirPollution(ctx context.Context, lat, lon float64) (*PollutionSample, error) {
	samples, err := c.airPollution(ctx, "/data/2.5/air_pollution", "air_pollution", lat, lon)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: empty air pollution response", ErrUpstream)
	}
	return &samples[0], nil
}

// AirPollutionForecast returns the hourly component forecast at a point.
func (c *Client) AirPollutionForecast(ctx context.Context, lat, lon float64) ([]PollutionSample, error) {
	return c.airPollution(ctx, "/data/2.5/air_pollution/forecast", "air_pollution_forecast", lat, lon)
}

func (c *Client) airPollution(ctx context.Context, path, endpoint string, lat, lon float64) ([]PollutionSample, error) {
	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))

	body, err := c.get(ctx, path, endpoint, params)
	if err != nil {
		return nil, err
	}

	var resp pollutionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode air pollution response: %w", err)
	}

	samples := make([]PollutionSample, 0, len(resp.List))
	for _, entry := range resp.List {
		samples = append(samples, PollutionSample{
			Time:       time.Unix(entry.Dt, 0).UTC(),
			Components: entry.Components.toConcentrations(),
		})
	}
	return samples, nil
}

// CurrentWeather returns current conditions at a point. The caller
// fills in the display city name; OpenWeather's station name is often
// a suburb.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error) {
	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("units", "metric")

	body, err := c.get(ctx, "/data/2.5/weather", "current_weather", params)
	if err != nil {
		return nil, err
	}

	var resp currentWeatherResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	snapshot := &models.WeatherSnapshot{
		Temp:       resp.Main.Temp,
		FeelsLike:  resp.Main.FeelsLike,
		Humidity:   resp.Main.Humidity,
		Pressure:   resp.Main.Pressure,
		WindSpeed:  resp.Wind.Speed,
		WindDeg:    resp.Wind.Deg,
		Clouds:     resp.Clouds.All,
		Visibility: resp.Visibility,
		Sunrise:    resp.Sys.Sunrise,
		Sunset:     resp.Sys.Sunset,
		FetchedAt:  time.Now().UTC(),
	}
	if len(resp.Weather) > 0 {
		snapshot.Condition = resp.Weather[0].Main
		snapshot.Description = resp.Weather[0].Description
		snapshot.Icon = resp.Weather[0].Icon
	}
	return snapshot, nil
}

// get performs one rate-limited, breaker-guarded, retried GET and
// returns the response body.
func (c *Client) get(ctx context.Context, path, endpoint string, params url.Values) ([]byte, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	params.Set("appid", c.cfg.APIKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	attempts := c.cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := c.cfg.RetryDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		body, err := c.breaker.Execute(func() ([]byte, error) {
			return c.doRequest(ctx, reqURL, endpoint)
		})
		if err == nil {
			return body, nil
		}
		lastErr = err

		// The breaker rejecting the call means the upstream is already
		// known bad; retrying immediately only adds load.
		if breaker.Rejected(err) {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt < attempts {
			logging.Debug().
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Err(err).
				Msg("Weather request failed, retrying")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, reqURL, endpoint string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordWeatherRequest(endpoint, "error", time.Since(start))
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to close weather response body")
		}
	}()

	metrics.RecordWeatherRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUpstream, endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read weather response: %w", err)
	}
	return body, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Upstream wire shapes. Only the fields we consume are declared.

type geoEntry struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

type pollutionResponse struct {
	List []pollutionEntry `json:"list"`
}

type pollutionEntry struct {
	Dt         int64         `json:"dt"`
	Components owmComponents `json:"components"`
}

// owmComponents is OpenWeather's component set, all in ug/m3. NOx,
// Benzene, Toluene and Xylene are not provided upstream and stay null
// in the mapped form.
type owmComponents struct {
	CO   *float64 `json:"co"`
	NO   *float64 `json:"no"`
	NO2  *float64 `json:"no2"`
	O3   *float64 `json:"o3"`
	SO2  *float64 `json:"so2"`
	PM25 *float64 `json:"pm2_5"`
	PM10 *float64 `json:"pm10"`
	NH3  *float64 `json:"nh3"`
}

func (c owmComponents) toConcentrations() models.PollutantConcentrations {
	return models.PollutantConcentrations{
		PM25: c.PM25,
		PM10: c.PM10,
		NO:   c.NO,
		NO2:  c.NO2,
		NH3:  c.NH3,
		CO:   c.CO,
		SO2:  c.SO2,
		O3:   c.O3,
	}
}

type currentWeatherResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Visibility int `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Name string `json:"name"`
}
