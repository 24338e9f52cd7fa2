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
	"github.com/mfukushima/drillmap/internal/timeline"
	"github.com/mfukushima/drillmap/internal/validation"
)

// ListEvents handles GET /api/events.
//
// Query: scenarioId (blank falls back to "default"), category and channel as
// optional comma-separated sets, dateFrom/dateTo as inclusive bounds. The
// store returns matches in insertion order; the response is sorted by
// (date, time) ascending before writing.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := timeline.EventFilter{
		ScenarioID: q.Get("scenarioId"),
		Categories: parseCommaSeparated(q.Get("category")),
		Channels:   parseCommaSeparated(q.Get("channel")),
		DateFrom:   q.Get("dateFrom"),
		DateTo:     q.Get("dateTo"),
	}

	items := h.store.QueryEvents(filter)
	timeline.SortEvents(items)
	respondJSON(w, http.StatusOK, items)
}

// CreateEvent handles POST /api/events. Validation happens before any
// mutation; a failure never touches the store.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		// Covers malformed JSON and non-finite or non-numeric lat/lng.
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Normalize()
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, verr.Error())
		return
	}

	iso, err := models.LocalISO(req.Date, req.Time)
	if err != nil {
		respondError(w, http.StatusBadRequest, "date/time not a valid timestamp")
		return
	}

	e := models.Event{
		ID:         uuid.NewString(),
		ScenarioID: req.ScenarioID,
		Date:       req.Date,
		Time:       req.Time,
		ISO:        iso,
		Title:      req.Title,
		Kind:       models.Kind(req.Kind),
		Category:   models.Category(req.Category),
		Channel:    models.Channel(req.Channel),
		Lat:        req.Lat.Float64(),
		Lng:        req.Lng.Float64(),
		Note:       req.Note,
		Actors:     req.Actors,
	}

	if err := h.store.InsertEvent(e); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logging.Info().
		Str("event", e.ID).
		Str("scenario", e.ScenarioID).
		Str("category", string(e.Category)).
		Msg("Event created")
	respondJSON(w, http.StatusCreated, e)
}

// DeleteEvent handles DELETE /api/events/{id}. Deleting an id twice reports
// not-found both times; the stored count never changes on a miss.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.RemoveEvent(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logging.Info().Str("event", id).Msg("Event deleted")
	respondJSON(w, http.StatusOK, okBody{OK: true})
}
