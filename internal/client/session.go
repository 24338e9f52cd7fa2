// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

// Package client implements the headless editor session: the reconciliation
// and presentation-side logic with no rendering attached.
//
// A session tracks one active scenario. It fetches events from the API
// (falling back to an embedded static dataset for the default scenario when
// the backend is unreachable), overlays cached points of interest, polls the
// audit log at a fixed interval, and owns the replay clock and the
// undo-on-delete stack. Pins and VisiblePins expose the merged, normalized
// list a map or timeline renders from.
package client

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/mfukushima/drillmap/internal/config"
	"github.com/mfukushima/drillmap/internal/logging"
	"github.com/mfukushima/drillmap/internal/models"
	"github.com/mfukushima/drillmap/internal/replay"
	"github.com/mfukushima/drillmap/internal/timeline"
	"github.com/mfukushima/drillmap/internal/undo"
)

// defaultEventsJSON is the static dataset used when the backend cannot be
// reached. Only the default scenario falls back to it; other scenarios
// degrade to an empty list.
//
//go:embed events.json
var defaultEventsJSON []byte

// POISource supplies the point-of-interest overlay. Implemented by
// poi.Client; stubbed in tests.
type POISource interface {
	POIs(ctx context.Context) ([]models.Pin, error)
}

// Session is a single-editor client session bound to one scenario at a time.
// All methods are safe for concurrent use.
type Session struct {
	cfg  config.ClientConfig
	http *http.Client
	pois POISource

	mu sync.Mutex

	scenarioID string
	events     []models.Event
	poiPins    []models.Pin
	logs       []models.LogItem
	enabled    map[models.Category]bool

	// generation rises whenever the scenario changes. A fetch started under
	// an older generation discards its result instead of overwriting state
	// that belongs to the newer scenario.
	generation int

	undoStack *undo.Stack
	clock     *replay.Clock
	poller    *replay.Poller
}

// NewSession creates a session on the default scenario with every category
// enabled and a stopped replay clock over the fallback minute range.
func NewSession(cfg config.ClientConfig, replayCfg config.ReplayConfig, pois POISource) *Session {
	enabled := make(map[models.Category]bool, len(models.Categories))
	for _, c := range models.Categories {
		enabled[c] = true
	}
	min, max := timeline.MinuteRange(nil)
	return &Session{
		cfg:        cfg,
		http:       &http.Client{Timeout: 15 * time.Second},
		pois:       pois,
		scenarioID: models.DefaultScenarioID,
		enabled:    enabled,
		undoStack:  undo.NewStack(cfg.UndoRetention),
		clock:      replay.NewClock(min, max, replayCfg.TickInterval),
	}
}

// Scenario returns the active scenario ID.
func (s *Session) Scenario() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scenarioID
}

// SetScenario switches the active scenario and reloads its events. Any event
// fetch still in flight for the previous scenario is superseded and its
// result discarded.
func (s *Session) SetScenario(ctx context.Context, scenarioID string) error {
	scenarioID = strings.TrimSpace(scenarioID)
	if scenarioID == "" {
		scenarioID = models.DefaultScenarioID
	}

	s.mu.Lock()
	s.scenarioID = scenarioID
	s.generation++
	s.mu.Unlock()

	return s.LoadEvents(ctx)
}

// LoadEvents fetches the active scenario's events from the server. On fetch
// failure the default scenario falls back to the embedded dataset and every
// other scenario to an empty list; the session stays usable offline.
func (s *Session) LoadEvents(ctx context.Context) error {
	s.mu.Lock()
	gen := s.generation
	scenarioID := s.scenarioID
	s.mu.Unlock()

	var events []models.Event
	err := s.getJSON(ctx, "/api/events?scenarioId="+url.QueryEscape(scenarioID), &events)
	if err != nil {
		logging.Warn().Err(err).Str("scenario", scenarioID).Msg("Event fetch failed, using fallback")
		events = fallbackEvents(scenarioID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		// A newer scenario switch won; this result is stale.
		return nil
	}
	s.events = events
	s.resetClockRangeLocked()
	return err
}

// fallbackEvents returns the offline dataset for a scenario.
func fallbackEvents(scenarioID string) []models.Event {
	if scenarioID != models.DefaultScenarioID {
		return []models.Event{}
	}
	var events []models.Event
	if err := json.Unmarshal(defaultEventsJSON, &events); err != nil {
		// The embedded dataset is fixed at build time; a decode failure is a
		// packaging bug, not a runtime condition.
		logging.Error().Err(err).Msg("Embedded fallback dataset is invalid")
		return []models.Event{}
	}
	return events
}

// Events returns a copy of the loaded event list.
func (s *Session) Events() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out
}

// RefreshPOIs loads the point-of-interest overlay through the configured
// source. Failures leave the previous overlay in place.
func (s *Session) RefreshPOIs(ctx context.Context) error {
	if s.pois == nil {
		return nil
	}
	pins, err := s.pois.POIs(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.poiPins = pins
	s.mu.Unlock()
	return nil
}

// CreateEvent submits a new event and appends the server's record locally.
func (s *Session) CreateEvent(ctx context.Context, req models.CreateEventRequest) (models.Event, error) {
	var created models.Event
	if err := s.postJSON(ctx, "/api/events", req, &created); err != nil {
		return models.Event{}, err
	}

	s.mu.Lock()
	if created.ScenarioID == s.scenarioID {
		s.events = append(s.events, created)
		s.resetClockRangeLocked()
	}
	s.mu.Unlock()
	return created, nil
}

// DeleteEvent deletes an event on the server, removes it locally and makes
// the deletion undoable for the configured retention window.
func (s *Session) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	var deleted models.Event
	found := false
	for _, e := range s.events {
		if e.ID == id {
			deleted = e
			found = true
			break
		}
	}
	s.mu.Unlock()

	if err := s.del(ctx, "/api/events/"+id); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.events[:0]
	for _, e := range s.events {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.events = kept
	s.resetClockRangeLocked()
	s.mu.Unlock()

	if found {
		s.undoStack.Push(deleted)
	}
	return nil
}

// Undo re-submits the most recently deleted event through the normal creation
// path. The restored event gets a new identity and timestamp. Returns false
// when no deletion is undoable (empty stack or retention elapsed).
func (s *Session) Undo(ctx context.Context) (models.Event, bool, error) {
	e, ok := s.undoStack.Pop()
	if !ok {
		return models.Event{}, false, nil
	}

	created, err := s.CreateEvent(ctx, models.RestoreEventRequest(e))
	if err != nil {
		// Re-submission failed; keep the deletion undoable.
		s.undoStack.Push(e)
		return models.Event{}, false, err
	}
	return created, true, nil
}

// Undoable reports how many deletions can currently be undone.
func (s *Session) Undoable() int {
	return s.undoStack.Len()
}

// StartLogPolling begins refetching the audit log at the configured fixed
// interval. A failed poll is silently skipped; the next tick retries.
func (s *Session) StartLogPolling(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poller != nil {
		return
	}
	s.poller = replay.StartPoller(s.cfg.LogPollInterval, func() {
		var logs []models.LogItem
		if err := s.getJSON(ctx, "/api/logs", &logs); err != nil {
			return
		}
		s.mu.Lock()
		s.logs = logs
		s.mu.Unlock()
	})
}

// StopLogPolling stops the audit-log poller, blocking until the loop exits.
func (s *Session) StopLogPolling() {
	s.mu.Lock()
	p := s.poller
	s.poller = nil
	s.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}

// Logs returns the last polled audit log, newest first.
func (s *Session) Logs() []models.LogItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.LogItem, len(s.logs))
	for i, l := range s.logs {
		out[len(s.logs)-1-i] = l
	}
	return out
}

// SetCategoryEnabled toggles one disaster category in the filter gate.
func (s *Session) SetCategoryEnabled(c models.Category, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled[c] = on
}

// CategoryEnabled reports whether a category currently passes the gate.
func (s *Session) CategoryEnabled(c models.Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled[c]
}

// Pins returns the merged, normalized pin list: scenario events plus the
// point-of-interest overlay, ordered by minute-of-day.
func (s *Session) Pins() []models.Pin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return timeline.BuildPins(s.events, s.poiPins)
}

// VisiblePins applies the category gate and, while the replay clock is
// playing or has been scrubbed, the replay time cutoff.
func (s *Session) VisiblePins(replayOn bool) []models.Pin {
	// Snapshot under the lock; DeleteEvent compacts s.events in place, so
	// aliasing it here would race with a concurrent delete.
	s.mu.Lock()
	events := make([]models.Event, len(s.events))
	copy(events, s.events)
	pois := make([]models.Pin, len(s.poiPins))
	copy(pois, s.poiPins)
	enabled := make(map[models.Category]bool, len(s.enabled))
	for k, v := range s.enabled {
		enabled[k] = v
	}
	s.mu.Unlock()

	pins := timeline.BuildPins(events, pois)
	return timeline.FilterPins(pins, enabled, replayOn, s.clock.Current())
}

// Clock returns the session's replay clock.
func (s *Session) Clock() *replay.Clock {
	return s.clock
}

// Close stops the poller and the replay clock. The session must not be used
// afterwards.
func (s *Session) Close() {
	s.StopLogPolling()
	s.clock.Stop()
}

// resetClockRangeLocked re-derives the replay bounds from the loaded events.
// Caller holds s.mu.
func (s *Session) resetClockRangeLocked() {
	min, max := timeline.MinuteRange(s.events)
	s.clock.SetRange(min, max)
}

// getJSON performs a GET against the API base and decodes the response body.
func (s *Session) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.APIBase+path, nil)
	if err != nil {
		return err
	}
	return s.do(req, v)
}

// postJSON performs a POST with a JSON body and decodes the response.
func (s *Session) postJSON(ctx context.Context, path string, body, v any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIBase+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, v)
}

// del performs a DELETE, discarding the response body on success.
func (s *Session) del(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.cfg.APIBase+path, nil)
	if err != nil {
		return err
	}
	return s.do(req, nil)
}

// do executes a request and decodes the JSON response into v. A non-2xx
// status becomes an error carrying the server's error message when one is
// present.
func (s *Session) do(req *http.Request, v any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &body) == nil && body.Error != "" {
			return fmt.Errorf("api: %s %s: %s", req.Method, req.URL.Path, body.Error)
		}
		return fmt.Errorf("api: %s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if v == nil {
		return nil
	}
	return json.Unmarshal(raw, v)
}
