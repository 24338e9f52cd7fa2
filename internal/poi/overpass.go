// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

// Package poi fetches points of interest from the Overpass API.
//
// The exercise map overlays read-only facility locations - schools, police
// and fire stations, hospitals and emergency assembly points - around the
// configured exercise area. Responses are cached with a long TTL (the data
// set is effectively static) and the upstream call is guarded by a circuit
// breaker so a struggling Overpass mirror degrades to cached or empty data
// instead of hammering the upstream.
package poi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mfukushima/drillmap/internal/cache"
	"github.com/mfukushima/drillmap/internal/logging"
	"github.com/mfukushima/drillmap/internal/metrics"
	"github.com/mfukushima/drillmap/internal/models"
)

// selectors are the Overpass node filters merged into one query.
var selectors = []string{
	`node["amenity"="school"]`,
	`node["amenity"="police"]`,
	`node["amenity"="fire_station"]`,
	`node["amenity"="hospital"]`,
	`node["emergency"="assembly_point"]`,
}

// cacheKey is the single cache slot; one exercise area per process.
const cacheKey = "overpass:pois"

// Config holds the Overpass client settings.
type Config struct {
	// URL is the Overpass interpreter endpoint.
	URL string

	// Lat/Lon/RadiusM define the search circle around the exercise area.
	Lat     float64
	Lon     float64
	RadiusM int

	// Timeout bounds one fetch; also sent to Overpass as its server-side
	// timeout (in seconds, minimum 1).
	Timeout time.Duration

	// CacheTTL is how long a fetched result stays valid (default 24h).
	CacheTTL time.Duration
}

// Client fetches and caches points of interest.
type Client struct {
	cfg     Config
	httpc   *http.Client
	cache   *cache.Cache
	breaker *gobreaker.CircuitBreaker[[]models.Pin]
}

// NewClient creates a POI client. Breaker tuning: open after 5 consecutive
// failures, retry one probe after 2 minutes.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 25 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}

	cb := gobreaker.NewCircuitBreaker[[]models.Pin](gobreaker.Settings{
		Name:        "overpass",
		MaxRequests: 1,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")
		},
	})

	return &Client{
		cfg:     cfg,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		cache:   cache.New(cfg.CacheTTL),
		breaker: cb,
	}
}

// Close releases the cache's background sweeper.
func (c *Client) Close() {
	c.cache.Close()
}

// POIs returns the points of interest for the exercise area, served from
// cache when fresh. Fetch failures are reported to the caller, which is
// expected to degrade to an empty overlay rather than fail the render.
func (c *Client) POIs(ctx context.Context) ([]models.Pin, error) {
	if v, ok := c.cache.Get(cacheKey); ok {
		metrics.POICacheHits.Inc()
		return v.([]models.Pin), nil
	}

	pins, err := c.breaker.Execute(func() ([]models.Pin, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		result := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "open"
		}
		metrics.RecordPOIFetch(result)
		return nil, err
	}

	metrics.RecordPOIFetch("success")
	c.cache.Set(cacheKey, pins)
	return pins, nil
}

// Invalidate drops the cached result, forcing the next POIs call upstream.
func (c *Client) Invalidate() {
	c.cache.Delete(cacheKey)
}

// overpassResponse is the subset of the Overpass JSON output we read.
type overpassResponse struct {
	Elements []struct {
		ID   int64             `json:"id"`
		Lat  float64           `json:"lat"`
		Lon  float64           `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// fetch performs one Overpass query and maps the elements to pins carrying
// the legacy single "type" field; the timeline normalizer lifts them into
// the canonical kind/category shape.
func (c *Client) fetch(ctx context.Context) ([]models.Pin, error) {
	query := c.buildQuery()

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("poi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poi: overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("poi: overpass status %d", resp.StatusCode)
	}

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("poi: decode response: %w", err)
	}

	pins := make([]models.Pin, 0, len(decoded.Elements))
	for _, el := range decoded.Elements {
		title := el.Tags["name"]
		if title == "" {
			title = "Unnamed POI"
		}
		legacy := el.Tags["amenity"]
		if legacy == "" {
			legacy = el.Tags["emergency"]
		}
		if legacy == "" {
			legacy = "poi"
		}
		pins = append(pins, models.Pin{
			ID:         "poi" + strconv.FormatInt(el.ID, 10),
			Title:      title,
			Lat:        el.Lat,
			Lng:        el.Lon,
			LegacyType: legacy,
		})
	}

	logging.Debug().Int("count", len(pins)).Msg("Fetched points of interest")
	return pins, nil
}

// buildQuery assembles the Overpass QL statement for the configured circle.
func (c *Client) buildQuery() string {
	timeoutSec := int(c.cfg.Timeout.Seconds())
	if timeoutSec < 1 {
		timeoutSec = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];(", timeoutSec)
	for _, sel := range selectors {
		fmt.Fprintf(&b, "%s(around:%d,%f,%f);", sel, c.cfg.RadiusM, c.cfg.Lat, c.cfg.Lon)
	}
	b.WriteString(");out body;")
	return b.String()
}
