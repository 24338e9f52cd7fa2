// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

// Package undo keeps recently deleted events available for re-submission.
//
// Each pushed record carries its own expiry timer; expiry silently drops the
// entry, after which the deletion is final. Pop is last-in-first-out and
// cancels the popped entry's timer. Undo re-creates the record through the
// normal creation path, so the restored record gets a new identity - this is
// not a server-side tombstone.
package undo

import (
	"sync"
	"time"

	"github.com/mfukushima/drillmap/internal/models"
)

// DefaultRetention is how long a deleted event stays undoable.
const DefaultRetention = 60 * time.Second

type entry struct {
	event models.Event
	timer *time.Timer
}

// Stack is a LIFO of deleted events with per-entry expiry.
type Stack struct {
	mu        sync.Mutex
	entries   []entry
	retention time.Duration
}

// NewStack creates a stack whose entries expire after retention.
func NewStack(retention time.Duration) *Stack {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Stack{retention: retention}
}

// Push records a deleted event and schedules its expiry. Expiry removes only
// that entry; earlier entries keep their own timers.
func (s *Stack) Push(e models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := e.ID
	t := time.AfterFunc(s.retention, func() { s.expire(id) })
	s.entries = append(s.entries, entry{event: e, timer: t})
}

// Pop removes and returns the most recently deleted event, cancelling its
// pending expiry. Returns false when nothing is undoable.
func (s *Stack) Pop() (models.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return models.Event{}, false
	}
	last := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	last.timer.Stop()
	return last.event, true
}

// Len reports how many deletions are currently undoable.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// expire drops the entry for id, if still present. No further effect.
func (s *Stack) expire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.event.ID != id {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}
