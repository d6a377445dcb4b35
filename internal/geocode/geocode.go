// Package geocode resolves place names to coordinates so a site can be
// analyzed by name. The resolver sits behind an explicit TTL cache that is
// injected at construction, never a package-level singleton.
package geocode

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jbadenas/pistaclima/internal/httputil"
	"github.com/jbadenas/pistaclima/internal/models"
)

const nominatimURL = "https://nominatim.openstreetmap.org/search"

// Resolver looks up a location for a free-form place name.
type Resolver interface {
	Resolve(name string) (models.Location, error)
}

// Client is a Nominatim-style forward geocoder.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a geocoder against the public Nominatim endpoint.
func NewClient() *Client {
	return &Client{
		baseURL: nominatimURL,
		client:  httputil.NewClientWithUserAgent("pistaclima/1.0"),
	}
}

// NewClientWithBase returns a geocoder against a custom endpoint (tests).
func NewClientWithBase(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  httputil.NewClientWithUserAgent("pistaclima/1.0"),
	}
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Resolve returns the best match for a place name.
func (c *Client) Resolve(name string) (models.Location, error) {
	u := fmt.Sprintf("%s?q=%s&format=json&limit=1", c.baseURL, url.QueryEscape(name))

	var body []byte
	operation := func() error {
		resp, err := c.client.Get(u)
		if err != nil {
			return fmt.Errorf("geocode: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("geocode status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("geocode status %d", resp.StatusCode))
		}
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, bo); err != nil {
		return models.Location{}, err
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return models.Location{}, fmt.Errorf("unmarshal geocode: %w", err)
	}
	if len(results) == 0 {
		return models.Location{}, fmt.Errorf("no geocode match for %q", name)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("parse lat: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("parse lon: %w", err)
	}
	return models.Location{Name: results[0].DisplayName, Latitude: lat, Longitude: lon}, nil
}
