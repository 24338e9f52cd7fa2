// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

package api

import (
	"net/http"
	"strings"

	"github.com/mfukushima/drillmap/internal/logging"
	"github.com/mfukushima/drillmap/internal/models"
	"github.com/mfukushima/drillmap/internal/validation"
)

// ListScenarios handles GET /api/scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Scenarios())
}

// CreateScenario handles POST /api/scenarios. Scenarios are immutable once
// created; there is no update or delete route.
func (h *Handler) CreateScenario(w http.ResponseWriter, r *http.Request) {
	var req models.CreateScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, verr.Error())
		return
	}

	sc, err := h.store.CreateScenario(req.Name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logging.Info().Str("scenario", sc.ID).Str("name", sc.Name).Msg("Scenario created")
	respondJSON(w, http.StatusCreated, sc)
}
