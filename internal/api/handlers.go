// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

// Package api provides the HTTP surface of Drillmap.
//
// Handler methods are split across files by resource:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_scenarios.go: scenario listing and creation
//   - handlers_events.go: event query, creation, deletion
//   - handlers_participants.go: participant listing, creation, deletion
//   - handlers_logs.go: audit log listing and append
//   - handlers_health.go: liveness
//   - helpers.go: response and query helpers
//   - router.go: chi route wiring and middleware stack
package api

import (
	"github.com/mfukushima/drillmap/internal/config"
	"github.com/mfukushima/drillmap/internal/store"
)

// Handler carries the dependencies of all API handlers.
type Handler struct {
	store  *store.Store
	config *config.Config
}

// NewHandler creates the API handler.
func NewHandler(st *store.Store, cfg *config.Config) *Handler {
	return &Handler{store: st, config: cfg}
}
