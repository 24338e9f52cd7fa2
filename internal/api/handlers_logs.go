// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

package api

import (
	"net/http"

	"github.com/mfukushima/drillmap/internal/models"
)

// ListLogs handles GET /api/logs. Insertion order; the trail is append-only,
// so no filtering or pagination is offered.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Logs())
}

// AppendLog handles POST /api/logs. The append always succeeds: missing
// actor/action fall back to "System"/"unknown" and a non-object payload is
// normalized to an empty mapping. An undecodable body is treated as an empty
// entry rather than rejected.
func (h *Handler) AppendLog(w http.ResponseWriter, r *http.Request) {
	var req models.AppendLogRequest
	_ = decodeJSON(r, &req)

	item, err := h.store.AppendLog(req.LogItem())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, item)
}
