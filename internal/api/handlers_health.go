// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

package api

import "net/http"

// healthBody is the liveness response: process is up, plus the scenario
// count as a cheap signal that the store is loaded.
type healthBody struct {
	OK        bool `json:"ok"`
	Scenarios int  `json:"scenarios"`
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthBody{
		OK:        true,
		Scenarios: h.store.ScenarioCount(),
	})
}
