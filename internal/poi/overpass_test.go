// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

package poi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const overpassFixture = `{
	"elements": [
		{"id": 101, "lat": 35.45, "lon": 137.41, "tags": {"name": "East Elementary", "amenity": "school"}},
		{"id": 102, "lat": 35.46, "lon": 137.42, "tags": {"amenity": "hospital"}},
		{"id": 103, "lat": 35.47, "lon": 137.43, "tags": {"name": "River Park", "emergency": "assembly_point"}},
		{"id": 104, "lat": 35.48, "lon": 137.44, "tags": {"name": "Mystery"}}
	]
}`

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		URL:      srv.URL,
		Lat:      35.4527,
		Lon:      137.4138,
		RadiusM:  7000,
		Timeout:  2 * time.Second,
		CacheTTL: time.Minute,
	})
	t.Cleanup(c.Close)
	return c
}

func TestPOIsMapsElements(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		query := r.PostForm.Get("data")
		for _, want := range []string{"[out:json]", `node["amenity"="school"]`, `node["emergency"="assembly_point"]`, "around:7000"} {
			if !strings.Contains(query, want) {
				t.Errorf("query missing %q:\n%s", want, query)
			}
		}
		w.Write([]byte(overpassFixture))
	})

	pins, err := c.POIs(context.Background())
	if err != nil {
		t.Fatalf("POIs: %v", err)
	}
	if len(pins) != 4 {
		t.Fatalf("got %d pins, want 4", len(pins))
	}

	if pins[0].ID != "poi101" || pins[0].Title != "East Elementary" || pins[0].LegacyType != "school" {
		t.Errorf("pins[0] = %+v", pins[0])
	}
	if pins[1].Title != "Unnamed POI" {
		t.Errorf("unnamed element: title = %q, want fallback", pins[1].Title)
	}
	if pins[2].LegacyType != "assembly_point" {
		t.Errorf("emergency tag not used: %+v", pins[2])
	}
	if pins[3].LegacyType != "poi" {
		t.Errorf("untagged element: legacy = %q, want poi", pins[3].LegacyType)
	}
	if pins[0].Lat != 35.45 || pins[0].Lng != 137.41 {
		t.Errorf("coordinates lost: %+v", pins[0])
	}
}

func TestPOIsServedFromCache(t *testing.T) {
	var calls atomic.Int64
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(overpassFixture))
	})

	ctx := context.Background()
	if _, err := c.POIs(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := c.POIs(ctx); err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1 (second read cached)", got)
	}

	c.Invalidate()
	if _, err := c.POIs(ctx); err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("upstream calls = %d after Invalidate, want 2", got)
	}
}

func TestPOIsUpstreamError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if _, err := c.POIs(context.Background()); err == nil {
		t.Error("want error on upstream 502")
	}
}

func TestPOIsBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int64
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx := context.Background()
	for i := 0; i < 8; i++ {
		if _, err := c.POIs(ctx); err == nil {
			t.Fatal("want error while upstream fails")
		}
	}

	// The breaker opens after five consecutive failures; later calls are
	// rejected without reaching upstream.
	if got := calls.Load(); got != 5 {
		t.Errorf("upstream calls = %d, want 5 (breaker open afterwards)", got)
	}
}

func TestPOIsBadJSON(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{broken"))
	})
	if _, err := c.POIs(context.Background()); err == nil {
		t.Error("want error on undecodable response")
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{URL: "http://example.invalid"})
	defer c.Close()
	if c.cfg.Timeout != 25*time.Second {
		t.Errorf("Timeout default = %v, want 25s", c.cfg.Timeout)
	}
	if c.cfg.CacheTTL != 24*time.Hour {
		t.Errorf("CacheTTL default = %v, want 24h", c.cfg.CacheTTL)
	}
}

func TestBuildQueryTimeoutFloor(t *testing.T) {
	c := NewClient(Config{URL: "x", Timeout: 100 * time.Millisecond})
	defer c.Close()
	if !strings.Contains(c.buildQuery(), "[timeout:1]") {
		t.Errorf("query = %q, want minimum server timeout of 1", c.buildQuery())
	}
}
