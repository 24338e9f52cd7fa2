// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate decodes a latitude or longitude from either a JSON number or a
// numeric string. The pre-split data files carried coordinates both ways, so
// the boundary coerces rather than rejecting strings. Non-finite values are
// rejected at decode time.
type Coordinate float64

// UnmarshalJSON implements lenient numeric decoding with a finiteness check.
func (c *Coordinate) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return fmt.Errorf("coordinate must be a finite number")
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("coordinate %q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("coordinate must be a finite number")
	}
	*c = Coordinate(v)
	return nil
}

// Float64 returns the coordinate value.
func (c Coordinate) Float64() float64 { return float64(c) }

// CreateScenarioRequest is the body of POST /api/scenarios.
type CreateScenarioRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateEventRequest is the body of POST /api/events. String fields are
// trimmed before validation; kind/category/channel receive defaults when
// blank.
type CreateEventRequest struct {
	ScenarioID string `json:"scenarioId"`

	Date  string `json:"date" validate:"required,dateymd"`
	Time  string `json:"time" validate:"required,hhmm"`
	Title string `json:"title" validate:"required"`

	Kind     string `json:"kind"`
	Category string `json:"category"`
	Channel  string `json:"channel"`

	Lat *Coordinate `json:"lat" validate:"required"`
	Lng *Coordinate `json:"lng" validate:"required"`

	Note   string   `json:"note"`
	Actors []string `json:"actors"`
}

// Normalize trims the validated fields and applies creation defaults.
// Actors entries are coerced to non-empty strings; an empty result drops the
// slice entirely.
func (r *CreateEventRequest) Normalize() {
	r.ScenarioID = strings.TrimSpace(r.ScenarioID)
	if r.ScenarioID == "" {
		r.ScenarioID = DefaultScenarioID
	}
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.Title = strings.TrimSpace(r.Title)

	r.Kind = strings.TrimSpace(r.Kind)
	if r.Kind == "" {
		r.Kind = string(KindDisaster)
	}
	r.Category = strings.TrimSpace(r.Category)
	if r.Category == "" {
		r.Category = string(CategoryOther)
	}
	r.Channel = strings.TrimSpace(r.Channel)
	if r.Channel == "" {
		r.Channel = string(ChannelAction)
	}

	if r.Actors != nil {
		actors := make([]string, 0, len(r.Actors))
		for _, a := range r.Actors {
			if a != "" {
				actors = append(actors, a)
			}
		}
		if len(actors) == 0 {
			r.Actors = nil
		} else {
			r.Actors = actors
		}
	}
}

// RestoreEventRequest rebuilds a creation request from a previously stored
// event, for undo re-submission. The restored record goes through the normal
// creation path and receives a new identity.
func RestoreEventRequest(e Event) CreateEventRequest {
	lat := Coordinate(e.Lat)
	lng := Coordinate(e.Lng)
	return CreateEventRequest{
		ScenarioID: e.ScenarioID,
		Date:       e.Date,
		Time:       e.Time,
		Title:      e.Title,
		Kind:       string(e.Kind),
		Category:   string(e.Category),
		Channel:    string(e.Channel),
		Lat:        &lat,
		Lng:        &lng,
		Note:       e.Note,
		Actors:     e.Actors,
	}
}

// CreateParticipantRequest is the body of POST /api/participants.
type CreateParticipantRequest struct {
	ScenarioID string `json:"scenarioId"`
	Name       string `json:"name" validate:"required"`
	Role       string `json:"role"`
	Icon       string `json:"icon"`
	Color      string `json:"color"`
}

// Normalize trims all fields and defaults the scenario.
func (r *CreateParticipantRequest) Normalize() {
	r.ScenarioID = strings.TrimSpace(r.ScenarioID)
	if r.ScenarioID == "" {
		r.ScenarioID = DefaultScenarioID
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Role = strings.TrimSpace(r.Role)
	r.Icon = strings.TrimSpace(r.Icon)
	r.Color = strings.TrimSpace(r.Color)
}

// AppendLogRequest is the body of POST /api/logs. Every field is optional;
// fallbacks are applied server-side.
type AppendLogRequest struct {
	Actor   string `json:"actor"`
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

// LogItem converts the request into a stored record, applying the literal
// fallback strings and normalizing a non-object payload to an empty mapping.
func (r AppendLogRequest) LogItem() LogItem {
	actor := r.Actor
	if actor == "" {
		actor = "System"
	}
	action := r.Action
	if action == "" {
		action = "unknown"
	}
	payload, ok := r.Payload.(map[string]any)
	if !ok || payload == nil {
		payload = map[string]any{}
	}
	return LogItem{Actor: actor, Action: action, Payload: payload}
}
