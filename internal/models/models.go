// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

// Package models defines the stored entities and derived shapes shared by the
// store, the query engine and the HTTP layer.
//
// Four record collections are persisted: scenarios, events, participants and
// logs. Pins are a presentation-only superset of events and points of
// interest and are never persisted.
package models

import "time"

// DateLayout is the wire format for event dates ("YYYY-MM-DD").
// The format is zero-padded and fixed-width, so lexicographic comparison of
// date strings orders them chronologically.
const DateLayout = "2006-01-02"

// TimeLayout is the wire format for event times ("HH:mm", 24-hour).
const TimeLayout = "15:04"

// isoLayout matches the combined timestamp emitted for created events
// (UTC instant with millisecond precision).
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Kind is the object type of an event.
type Kind string

const (
	KindDisaster Kind = "disaster"
	KindShelter  Kind = "shelter"
	KindMisinfo  Kind = "misinfo"
	KindDecision Kind = "decision"
	KindPOI      Kind = "poi"
)

// Category is the disaster classification, the primary filter dimension.
type Category string

const (
	CategoryEarthquake Category = "earthquake"
	CategoryHeavyRain  Category = "heavy_rain"
	CategoryLandslide  Category = "landslide"
	CategoryFlood      Category = "flood"
	CategoryTyphoon    Category = "typhoon"
	CategoryOther      Category = "other"
)

// Categories lists all disaster categories in display order.
var Categories = []Category{
	CategoryEarthquake,
	CategoryHeavyRain,
	CategoryLandslide,
	CategoryFlood,
	CategoryTyphoon,
	CategoryOther,
}

// Channel is the semantic lane of an event, used for color-coding.
type Channel string

const (
	ChannelAction  Channel = "action"
	ChannelReport  Channel = "report"
	ChannelDamage  Channel = "damage"
	ChannelRequest Channel = "request"
)

// Scenario identifies an independent exercise instance. Scenarios are
// immutable once created; the "default" scenario always exists.
type Scenario struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"` // RFC3339
}

// DefaultScenarioID is the scenario every unscoped request falls back to.
const DefaultScenarioID = "default"

// Event is a recorded exercise event. Date, Time, Title, Lat and Lng are
// always present and validated before creation.
type Event struct {
	ID         string `json:"id"`
	ScenarioID string `json:"scenarioId"`

	Date string `json:"date"`          // "YYYY-MM-DD"
	Time string `json:"time"`          // "HH:mm"
	ISO  string `json:"iso,omitempty"` // derived from Date+Time, local-clock semantics

	Title    string   `json:"title"`
	Kind     Kind     `json:"kind"`
	Category Category `json:"category"`
	Channel  Channel  `json:"channel"`

	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`

	Note string `json:"note,omitempty"`

	// Actors holds participant IDs carrying out this event (optional).
	Actors []string `json:"actors,omitempty"`
}

// Participant belongs to one scenario, or to all scenarios when ScenarioID is
// empty (legacy shared participants).
type Participant struct {
	ID         string `json:"id"`
	ScenarioID string `json:"scenarioId,omitempty"`
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	Icon       string `json:"icon,omitempty"`
	Color      string `json:"color,omitempty"`
}

// LogItem is an append-only audit record. Log items are never mutated or
// deleted through the public contract.
type LogItem struct {
	ID      string         `json:"id"`
	Time    string         `json:"time"` // RFC3339
	Actor   string         `json:"actor"`
	Action  string         `json:"action"`
	Payload map[string]any `json:"payload"`
}

// Pin is the normalized presentation shape shared by events and points of
// interest. Computed per render cycle, never persisted.
type Pin struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	Date string `json:"date,omitempty"` // "YYYY-MM-DD"
	Time string `json:"time,omitempty"` // "HH:mm"
	ISO  string `json:"iso,omitempty"`

	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`

	Kind     Kind     `json:"kind,omitempty"`
	Category Category `json:"category,omitempty"`
	Channel  Channel  `json:"channel,omitempty"`

	Note string `json:"note,omitempty"`

	// LegacyType carries the pre-split single "type" string still produced by
	// point-of-interest sources. Normalization maps it onto Kind/Category.
	LegacyType string `json:"type,omitempty"`

	Actors []string `json:"actors,omitempty"`
}

// Pin converts an event into its presentation shape.
func (e Event) Pin() Pin {
	return Pin{
		ID:       e.ID,
		Title:    e.Title,
		Date:     e.Date,
		Time:     e.Time,
		ISO:      e.ISO,
		Lat:      e.Lat,
		Lng:      e.Lng,
		Kind:     e.Kind,
		Category: e.Category,
		Channel:  e.Channel,
		Note:     e.Note,
		Actors:   e.Actors,
	}
}

// LocalISO combines a date and time into an ISO-8601 UTC instant, reading the
// wall-clock numbers in the server's local zone. No timezone conversion is
// applied to the inputs themselves.
func LocalISO(date, hhmm string) (string, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+hhmm, time.Local)
	if err != nil {
		return "", err
	}
	return t.UTC().Format(isoLayout), nil
}
