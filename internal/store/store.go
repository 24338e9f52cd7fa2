// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

// Package store persists the four record collections as one JSON document.
//
// The document is read fully into memory at open and rewritten wholesale on
// every mutation (temp file + rename, so readers never observe a partial
// write). A mutex serializes access within the process; across processes the
// document is last-write-wins under the stated single-active-editor
// assumption.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mfukushima/drillmap/internal/logging"
	"github.com/mfukushima/drillmap/internal/metrics"
	"github.com/mfukushima/drillmap/internal/models"
	"github.com/mfukushima/drillmap/internal/timeline"
)

// ErrNotFound is returned by delete operations targeting a nonexistent id.
// Repeated deletes of the same id keep returning it.
var ErrNotFound = errors.New("not found")

// Document is the on-disk shape: four top-level arrays.
type Document struct {
	Scenarios    []models.Scenario    `json:"scenarios"`
	Events       []models.Event       `json:"events"`
	Logs         []models.LogItem     `json:"logs"`
	Participants []models.Participant `json:"participants"`
}

// normalize replaces missing arrays so the document always carries all four
// collections.
func (d *Document) normalize() {
	if d.Scenarios == nil {
		d.Scenarios = []models.Scenario{}
	}
	if d.Events == nil {
		d.Events = []models.Event{}
	}
	if d.Logs == nil {
		d.Logs = []models.LogItem{}
	}
	if d.Participants == nil {
		d.Participants = []models.Participant{}
	}
}

// Store is the repository object owning the document. All reads return
// copies; callers never alias internal state.
type Store struct {
	mu   sync.Mutex
	path string
	doc  Document
}

// Open loads the document at path, initializing any missing collection and
// immediately rewriting the normalized shape to disk. A missing file starts
// an empty document.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &s.doc); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// First run.
	default:
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}

	s.doc.normalize()
	if err := s.flush(); err != nil {
		return nil, err
	}

	logging.Info().
		Str("path", path).
		Int("scenarios", len(s.doc.Scenarios)).
		Int("events", len(s.doc.Events)).
		Msg("Store opened")
	return s, nil
}

// flush rewrites the whole document. Must be called with mu held.
func (s *Store) flush() error {
	start := time.Now()

	data, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		metrics.RecordStoreFlush(time.Since(start), err)
		return fmt.Errorf("store: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		metrics.RecordStoreFlush(time.Since(start), err)
		return fmt.Errorf("store: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".drillmap-*.json")
	if err != nil {
		metrics.RecordStoreFlush(time.Since(start), err)
		return fmt.Errorf("store: temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		metrics.RecordStoreFlush(time.Since(start), err)
		return fmt.Errorf("store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		metrics.RecordStoreFlush(time.Since(start), err)
		return fmt.Errorf("store: close: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		metrics.RecordStoreFlush(time.Since(start), err)
		return fmt.Errorf("store: rename: %w", err)
	}

	metrics.RecordStoreFlush(time.Since(start), nil)
	return nil
}

// EnsureDefaultScenario guarantees the "default" scenario exists, creating it
// when absent. Reports whether a scenario was created.
func (s *Store) EnsureDefaultScenario() (models.Scenario, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sc := range s.doc.Scenarios {
		if sc.ID == models.DefaultScenarioID {
			return sc, false, nil
		}
	}

	sc := models.Scenario{
		ID:        models.DefaultScenarioID,
		Name:      models.DefaultScenarioID,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	s.doc.Scenarios = append(s.doc.Scenarios, sc)
	if err := s.flush(); err != nil {
		return models.Scenario{}, false, err
	}
	return sc, true, nil
}

// Scenarios returns all scenarios in insertion order.
func (s *Store) Scenarios() []models.Scenario {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Scenario, len(s.doc.Scenarios))
	copy(out, s.doc.Scenarios)
	return out
}

// ScenarioCount returns the number of scenarios, for the health endpoint.
func (s *Store) ScenarioCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.doc.Scenarios)
}

// CreateScenario appends a new scenario with a generated id and timestamp.
func (s *Store) CreateScenario(name string) (models.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc := models.Scenario{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	s.doc.Scenarios = append(s.doc.Scenarios, sc)
	if err := s.flush(); err != nil {
		return models.Scenario{}, err
	}
	return sc, nil
}

// QueryEvents returns events matching the filter in insertion order.
func (s *Store) QueryEvents(f timeline.EventFilter) []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return timeline.FilterEvents(s.doc.Events, f)
}

// EventCount returns the number of stored events across all scenarios.
func (s *Store) EventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.doc.Events)
}

// InsertEvent appends an already-validated event.
func (s *Store) InsertEvent(e models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Events = append(s.doc.Events, e)
	return s.flush()
}

// RemoveEvent deletes the event with the given id. Returns ErrNotFound when
// no record matched; the store is unchanged in that case.
func (s *Store) RemoveEvent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.doc.Events[:0]
	for _, e := range s.doc.Events {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(s.doc.Events) {
		return ErrNotFound
	}
	s.doc.Events = kept
	return s.flush()
}

// Participants returns the participants visible within a scenario: those with
// no scenario (legacy shared) plus those scoped to it. Insertion order.
func (s *Store) Participants(scenarioID string) []models.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Participant, 0, len(s.doc.Participants))
	for _, p := range s.doc.Participants {
		if p.ScenarioID == "" || p.ScenarioID == scenarioID {
			out = append(out, p)
		}
	}
	return out
}

// InsertParticipant appends a participant.
func (s *Store) InsertParticipant(p models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Participants = append(s.doc.Participants, p)
	return s.flush()
}

// RemoveParticipant deletes the participant with the given id, or returns
// ErrNotFound.
func (s *Store) RemoveParticipant(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.doc.Participants[:0]
	for _, p := range s.doc.Participants {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(s.doc.Participants) {
		return ErrNotFound
	}
	s.doc.Participants = kept
	return s.flush()
}

// Logs returns all log items in insertion order.
func (s *Store) Logs() []models.LogItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.LogItem, len(s.doc.Logs))
	copy(out, s.doc.Logs)
	return out
}

// AppendLog stores a log item, assigning id and timestamp. Append-only: no
// mutation or deletion path exists for logs.
func (s *Store) AppendLog(item models.LogItem) (models.LogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = uuid.NewString()
	item.Time = time.Now().Format(time.RFC3339)
	if item.Payload == nil {
		item.Payload = map[string]any{}
	}
	s.doc.Logs = append(s.doc.Logs, item)
	if err := s.flush(); err != nil {
		return models.LogItem{}, err
	}
	return item, nil
}
