// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mfukushima/drillmap/internal/logging"
	"github.com/mfukushima/drillmap/internal/middleware"
)

// NewRouter wires all routes with the shared middleware stack.
func (h *Handler) NewRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.config.Security.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Get("/scenarios", h.ListScenarios)
		r.Get("/events", h.ListEvents)
		r.Get("/participants", h.ListParticipants)
		r.Get("/logs", h.ListLogs)

		// Mutations carry a per-IP rate limit; reads stay unthrottled so the
		// log poller and map refreshes are never starved.
		r.Group(func(r chi.Router) {
			if !h.config.Security.RateLimitDisabled {
				r.Use(httprate.LimitByIP(
					h.config.Security.RateLimitReqs,
					h.config.Security.RateLimitWindow,
				))
			}
			r.Post("/scenarios", h.CreateScenario)
			r.Post("/events", h.CreateEvent)
			r.Delete("/events/{id}", h.DeleteEvent)
			r.Post("/participants", h.CreateParticipant)
			r.Delete("/participants/{id}", h.DeleteParticipant)
			r.Post("/logs", h.AppendLog)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// recoverer converts a handler panic into the uniform 500 error body. The
// message is the panic value; no stack trace reaches the client.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logging.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Msg("Handler panic")
				respondError(w, http.StatusInternalServerError, fmt.Sprint(rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
