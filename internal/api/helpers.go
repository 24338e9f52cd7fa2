// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

package api

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/mfukushima/drillmap/internal/logging"
	"github.com/mfukushima/drillmap/internal/models"
)

// errorBody is the uniform error shape of every failure response.
type errorBody struct {
	Error string `json:"error"`
}

// okBody acknowledges deletions.
type okBody struct {
	OK bool `json:"ok"`
}

// respondJSON writes v as a JSON response.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes the {error: message} failure body.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message})
}

// decodeJSON decodes a request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// scenarioParam reads the scenarioId query/body value, falling back to
// "default" when blank or whitespace-only.
func scenarioParam(raw string) string {
	if s := strings.TrimSpace(raw); s != "" {
		return s
	}
	return models.DefaultScenarioID
}

// parseCommaSeparated parses a comma-separated query value into a set slice.
// Empty input yields nil, meaning "no filtering on this dimension".
func parseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
