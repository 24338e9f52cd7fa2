// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfukushima/drillmap/internal/logging"
	"github.com/mfukushima/drillmap/internal/models"
	"github.com/mfukushima/drillmap/internal/store"
	"github.com/mfukushima/drillmap/internal/validation"
)

// participantsBody wraps the participant list; this endpoint predates the
// bare-array responses and clients depend on the envelope.
type participantsBody struct {
	Items []models.Participant `json:"items"`
}

// ListParticipants handles GET /api/participants. Participants without a
// scenario are legacy shared records and appear under every scenario.
func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	scenarioID := scenarioParam(r.URL.Query().Get("scenarioId"))
	respondJSON(w, http.StatusOK, participantsBody{Items: h.store.Participants(scenarioID)})
}

// CreateParticipant handles POST /api/participants.
func (h *Handler) CreateParticipant(w http.ResponseWriter, r *http.Request) {
	var req models.CreateParticipantRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Normalize()
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, verr.Error())
		return
	}

	p := models.Participant{
		ID:         uuid.NewString(),
		ScenarioID: req.ScenarioID,
		Name:       req.Name,
		Role:       req.Role,
		Icon:       req.Icon,
		Color:      req.Color,
	}
	if err := h.store.InsertParticipant(p); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logging.Info().Str("participant", p.ID).Str("scenario", p.ScenarioID).Msg("Participant created")
	respondJSON(w, http.StatusCreated, p)
}

// DeleteParticipant handles DELETE /api/participants/{id}.
func (h *Handler) DeleteParticipant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.RemoveParticipant(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logging.Info().Str("participant", id).Msg("Participant deleted")
	respondJSON(w, http.StatusOK, okBody{OK: true})
}
