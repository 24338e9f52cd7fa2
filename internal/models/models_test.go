// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestLocalISO(t *testing.T) {
	got, err := LocalISO("2025-10-05", "13:30")
	if err != nil {
		t.Fatalf("LocalISO: %v", err)
	}

	// The result is the local wall-clock instant rendered in UTC.
	want := time.Date(2025, 10, 5, 13, 30, 0, 0, time.Local).UTC().Format(isoLayout)
	if got != want {
		t.Errorf("LocalISO = %q, want %q", got, want)
	}
	if !strings.HasSuffix(got, "Z") {
		t.Errorf("LocalISO = %q, want UTC instant", got)
	}
}

func TestLocalISOInvalid(t *testing.T) {
	for _, tt := range []struct{ date, hhmm string }{
		{"2025-13-05", "13:30"},
		{"2025-10-05", "25:00"},
		{"not a date", "13:30"},
	} {
		if _, err := LocalISO(tt.date, tt.hhmm); err == nil {
			t.Errorf("LocalISO(%q, %q) succeeded, want error", tt.date, tt.hhmm)
		}
	}
}

func TestEventPin(t *testing.T) {
	e := Event{
		ID:       "e1",
		Date:     "2025-10-05",
		Time:     "13:30",
		ISO:      "2025-10-05T04:30:00.000Z",
		Title:    "Shelter opened",
		Kind:     KindShelter,
		Category: CategoryEarthquake,
		Channel:  ChannelAction,
		Lat:      35.45,
		Lng:      137.41,
		Note:     "capacity 120",
		Actors:   []string{"p1"},
	}
	p := e.Pin()
	if p.ID != e.ID || p.Title != e.Title || p.Date != e.Date || p.Time != e.Time {
		t.Errorf("pin lost identity fields: %+v", p)
	}
	if p.Kind != e.Kind || p.Category != e.Category || p.Channel != e.Channel {
		t.Errorf("pin lost classification: %+v", p)
	}
	if p.Lat != e.Lat || p.Lng != e.Lng || p.Note != e.Note {
		t.Errorf("pin lost location/note: %+v", p)
	}
	if p.LegacyType != "" {
		t.Errorf("event pins must not carry a legacy type, got %q", p.LegacyType)
	}
}

func TestCoordinateUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{"number", `35.4527`, 35.4527, false},
		{"negative", `-137.4`, -137.4, false},
		{"integer", `35`, 35, false},
		{"numeric string", `"35.4527"`, 35.4527, false},
		{"padded string", `" 35.45 "`, 35.45, false},
		{"null", `null`, 0, true},
		{"word", `"not-a-number"`, 0, true},
		{"empty string", `""`, 0, true},
		{"nan string", `"NaN"`, 0, true},
		{"inf string", `"+Inf"`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Coordinate
			err := json.Unmarshal([]byte(tt.raw), &c)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Unmarshal(%s) succeeded with %v, want error", tt.raw, c)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.raw, err)
			}
			if c.Float64() != tt.want {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.raw, c.Float64(), tt.want)
			}
		})
	}
}

func TestCreateEventRequestNormalize(t *testing.T) {
	lat, lng := Coordinate(35.45), Coordinate(137.41)
	r := CreateEventRequest{
		ScenarioID: "  ",
		Date:       " 2025-10-05 ",
		Time:       " 13:30 ",
		Title:      "  Earthquake  ",
		Lat:        &lat,
		Lng:        &lng,
		Actors:     []string{"", "p1", ""},
	}
	r.Normalize()

	if r.ScenarioID != DefaultScenarioID {
		t.Errorf("scenarioId = %q, want default", r.ScenarioID)
	}
	if r.Date != "2025-10-05" || r.Time != "13:30" || r.Title != "Earthquake" {
		t.Errorf("fields not trimmed: %+v", r)
	}
	if r.Kind != string(KindDisaster) || r.Category != string(CategoryOther) || r.Channel != string(ChannelAction) {
		t.Errorf("defaults not applied: kind=%q category=%q channel=%q", r.Kind, r.Category, r.Channel)
	}
	if len(r.Actors) != 1 || r.Actors[0] != "p1" {
		t.Errorf("actors = %v, want [p1]", r.Actors)
	}
}

func TestCreateEventRequestNormalizeDropsEmptyActors(t *testing.T) {
	r := CreateEventRequest{Actors: []string{"", ""}}
	r.Normalize()
	if r.Actors != nil {
		t.Errorf("actors = %v, want nil", r.Actors)
	}
}

func TestCreateEventRequestNormalizeKeepsExplicitValues(t *testing.T) {
	r := CreateEventRequest{
		ScenarioID: "drill-2",
		Kind:       "shelter",
		Category:   "flood",
		Channel:    "report",
	}
	r.Normalize()
	if r.ScenarioID != "drill-2" || r.Kind != "shelter" || r.Category != "flood" || r.Channel != "report" {
		t.Errorf("explicit values overridden: %+v", r)
	}
}

func TestRestoreEventRequest(t *testing.T) {
	e := Event{
		ID:         "old-id",
		ScenarioID: "drill-2",
		Date:       "2025-10-05",
		Time:       "13:30",
		Title:      "Landslide",
		Kind:       KindDisaster,
		Category:   CategoryLandslide,
		Channel:    ChannelDamage,
		Lat:        35.47,
		Lng:        137.43,
		Note:       "road blocked",
		Actors:     []string{"p1"},
	}
	r := RestoreEventRequest(e)

	if r.ScenarioID != e.ScenarioID || r.Date != e.Date || r.Time != e.Time || r.Title != e.Title {
		t.Errorf("restore lost core fields: %+v", r)
	}
	if r.Kind != string(e.Kind) || r.Category != string(e.Category) || r.Channel != string(e.Channel) {
		t.Errorf("restore lost classification: %+v", r)
	}
	if r.Lat == nil || r.Lng == nil || r.Lat.Float64() != e.Lat || r.Lng.Float64() != e.Lng {
		t.Errorf("restore lost coordinates: %+v", r)
	}
	if r.Note != e.Note || len(r.Actors) != 1 {
		t.Errorf("restore lost note/actors: %+v", r)
	}
}

func TestCreateParticipantRequestNormalize(t *testing.T) {
	r := CreateParticipantRequest{
		ScenarioID: " ",
		Name:       " Fire Brigade ",
		Role:       " responder ",
	}
	r.Normalize()
	if r.ScenarioID != DefaultScenarioID {
		t.Errorf("scenarioId = %q, want default", r.ScenarioID)
	}
	if r.Name != "Fire Brigade" || r.Role != "responder" {
		t.Errorf("fields not trimmed: %+v", r)
	}
}

func TestAppendLogRequestFallbacks(t *testing.T) {
	tests := []struct {
		name       string
		req        AppendLogRequest
		wantActor  string
		wantAction string
	}{
		{"empty", AppendLogRequest{}, "System", "unknown"},
		{"actor only", AppendLogRequest{Actor: "User"}, "User", "unknown"},
		{"full", AppendLogRequest{Actor: "User", Action: "event created"}, "User", "event created"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := tt.req.LogItem()
			if item.Actor != tt.wantActor || item.Action != tt.wantAction {
				t.Errorf("got actor=%q action=%q, want %q/%q", item.Actor, item.Action, tt.wantActor, tt.wantAction)
			}
			if item.Payload == nil {
				t.Error("payload must never be nil")
			}
		})
	}
}

func TestAppendLogRequestNonObjectPayload(t *testing.T) {
	for _, payload := range []any{"a string", 42.0, []any{"list"}, nil} {
		item := AppendLogRequest{Payload: payload}.LogItem()
		if item.Payload == nil || len(item.Payload) != 0 {
			t.Errorf("payload %v: got %v, want empty map", payload, item.Payload)
		}
	}

	item := AppendLogRequest{Payload: map[string]any{"id": "e1"}}.LogItem()
	if item.Payload["id"] != "e1" {
		t.Errorf("object payload lost: %v", item.Payload)
	}
}

func TestEventJSONShape(t *testing.T) {
	e := Event{ID: "e1", ScenarioID: "default", Date: "2025-10-05", Time: "13:30", Title: "t", Lat: 1, Lng: 2}
	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(raw)
	for _, key := range []string{`"scenarioId"`, `"date"`, `"time"`, `"title"`, `"lat"`, `"lng"`} {
		if !strings.Contains(s, key) {
			t.Errorf("marshaled event missing %s: %s", key, s)
		}
	}
	// Optional fields stay off the wire when empty.
	for _, key := range []string{`"iso"`, `"note"`, `"actors"`} {
		if strings.Contains(s, key) {
			t.Errorf("marshaled event should omit empty %s: %s", key, s)
		}
	}
}
