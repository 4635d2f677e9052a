// Package geocode resolves a coordinate pair to the nearest named place
// via OpenWeatherMap's reverse geocoding endpoint. Like weather, a failure
// here is fatal to the render request.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	appLog "inkdash/internal/log"
)

const defaultBaseURL = "http://api.openweathermap.org/geo/1.0/reverse"

// Client performs reverse geocoding lookups with a bounded timeout.
type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient() *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBaseURL,
	}
}

type place struct {
	Name string `json:"name"`
}

// Resolve returns the name of the first place the provider reports for the
// coordinates. Any non-2xx response or an empty result set is an error.
func (c *Client) Resolve(ctx context.Context, apiKey string, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("limit", "1")
	q.Set("appid", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocode: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("geocode: unexpected status %s", resp.Status)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return "", fmt.Errorf("geocode: decode: %w", err)
	}
	if len(places) == 0 {
		return "", fmt.Errorf("geocode: no place found for %v,%v", lat, lon)
	}

	appLog.Info("location resolved", "name", places[0].Name)
	return places[0].Name, nil
}
