// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

// Package metrics provides Prometheus instrumentation for the HTTP surface,
// the document store and the point-of-interest upstream.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drillmap_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drillmap_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Store Metrics. Every mutation rewrites the whole document, so flush
	// duration tracks write amplification as collections grow.
	StoreFlushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drillmap_store_flushes_total",
			Help: "Total number of document store flushes",
		},
		[]string{"result"}, // "success", "error"
	)

	StoreFlushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "drillmap_store_flush_duration_seconds",
			Help:    "Duration of document store flushes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Upstream Metrics
	POIFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drillmap_poi_fetches_total",
			Help: "Total number of Overpass point-of-interest fetches",
		},
		[]string{"result"}, // "success", "error", "open" (breaker rejected)
	)

	POICacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drillmap_poi_cache_hits_total",
			Help: "Total number of point-of-interest cache hits",
		},
	)
)

// RecordAPIRequest observes one handled HTTP request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordStoreFlush observes one whole-document rewrite.
func RecordStoreFlush(duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	StoreFlushesTotal.WithLabelValues(result).Inc()
	StoreFlushDuration.Observe(duration.Seconds())
}

// RecordPOIFetch observes one upstream fetch outcome.
func RecordPOIFetch(result string) {
	POIFetchesTotal.WithLabelValues(result).Inc()
}
