// Package weather fetches current conditions from OpenWeatherMap.
//
// Unlike the supplementary panels, a weather failure is fatal to the
// render request: the info header is load-bearing and a broken header is
// worse than a failed render. Errors are therefore returned, not swallowed.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	appLog "inkdash/internal/log"
	"inkdash/internal/model"
)

const defaultBaseURL = "https://api.openweathermap.org/data/3.0/onecall"

// Client fetches current conditions with a bounded timeout.
type Client struct {
	http      *http.Client
	baseURL   string
	assetsDir string
}

// NewClient creates a weather client. Condition icons are resolved to
// files under assetsDir/icons.
func NewClient(assetsDir string) *Client {
	return &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		baseURL:   defaultBaseURL,
		assetsDir: assetsDir,
	}
}

// onecallResponse is the subset of the One Call payload we consume.
type onecallResponse struct {
	Current struct {
		Temp    float64 `json:"temp"`
		Weather []struct {
			Icon string `json:"icon"`
		} `json:"weather"`
	} `json:"current"`
}

// Current returns the rounded Celsius temperature and the local icon asset
// for the given coordinates. Any non-2xx response is an error.
func (c *Client) Current(ctx context.Context, apiKey string, lat, lon float64) (model.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("units", "metric")
	q.Set("exclude", "minutely")
	q.Set("appid", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return model.WeatherSnapshot{}, err
	}

	appLog.Info("weather request", "lat", lat, "lon", lon)

	resp, err := c.http.Do(req)
	if err != nil {
		return model.WeatherSnapshot{}, fmt.Errorf("weather: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.WeatherSnapshot{}, fmt.Errorf("weather: unexpected status %s", resp.Status)
	}

	var body onecallResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.WeatherSnapshot{}, fmt.Errorf("weather: decode: %w", err)
	}
	if len(body.Current.Weather) == 0 {
		return model.WeatherSnapshot{}, fmt.Errorf("weather: response carries no condition")
	}

	snap := model.WeatherSnapshot{
		Icon: filepath.Join(c.assetsDir, "icons", body.Current.Weather[0].Icon+".svg"),
		Temp: int(math.Round(body.Current.Temp)),
	}
	appLog.Debug("weather loaded", "temp", snap.Temp, "icon", snap.Icon)
	return snap, nil
}
