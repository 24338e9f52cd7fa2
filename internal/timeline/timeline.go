// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

// Package timeline implements the event query/filter engine and the pin
// normalization pipeline.
//
// Events are filtered by scenario, category set, channel set and inclusive
// date range, then sorted by (date, time). Events and externally fetched
// points of interest are merged into a uniform pin list ordered by
// minute-of-day, which the replay cutoff filters against.
package timeline

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mfukushima/drillmap/internal/models"
)

// MinuteSentinel is the minute-of-day assigned to records without a time.
// It sorts untimed pins after every timed one.
const MinuteSentinel = math.MaxInt

// now is swappable for tests of the current-date default.
var now = time.Now

// EventFilter selects a subset of stored events. Zero values disable the
// corresponding dimension, except ScenarioID which falls back to "default".
type EventFilter struct {
	ScenarioID string

	// Categories and Channels are exact-match sets; empty means no filtering
	// on that dimension. Unknown values simply match nothing.
	Categories []string
	Channels   []string

	// DateFrom and DateTo are inclusive "YYYY-MM-DD" bounds. The fixed-width
	// format makes lexicographic comparison chronological.
	DateFrom string
	DateTo   string
}

// Scenario returns the effective scenario, treating blank or whitespace-only
// values as "default".
func (f EventFilter) Scenario() string {
	if s := strings.TrimSpace(f.ScenarioID); s != "" {
		return s
	}
	return models.DefaultScenarioID
}

// Match reports whether a single event passes the filter.
func (f EventFilter) Match(e models.Event) bool {
	if e.ScenarioID != f.Scenario() {
		return false
	}
	if len(f.Categories) > 0 && !contains(f.Categories, string(e.Category)) {
		return false
	}
	if len(f.Channels) > 0 && !contains(f.Channels, string(e.Channel)) {
		return false
	}
	if f.DateFrom != "" && e.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && e.Date > f.DateTo {
		return false
	}
	return true
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// FilterEvents returns the matching subset in the input's insertion order.
// Sorting is the caller's responsibility.
func FilterEvents(events []models.Event, f EventFilter) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// SortEvents orders events ascending by (date, time) in place. Both fields
// are zero-padded fixed-width strings, so plain string comparison is correct.
func SortEvents(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Time < events[j].Time
	})
}

// MinuteOfDay converts "HH:mm" to minutes since midnight. A missing or
// malformed time yields MinuteSentinel so the record sorts last and is never
// hidden by the replay cutoff.
func MinuteOfDay(hhmm string) int {
	h, m, ok := splitHHMM(hhmm)
	if !ok {
		return MinuteSentinel
	}
	return h*60 + m
}

func splitHHMM(hhmm string) (h, m int, ok bool) {
	i := strings.IndexByte(hhmm, ':')
	if i < 0 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(hhmm[:i])
	if err != nil {
		return 0, 0, false
	}
	m, err = strconv.Atoi(hhmm[i+1:])
	if err != nil {
		return 0, 0, false
	}
	return h, m, true
}

// FormatMinute renders a minute-of-day as "HH:mm" for display.
func FormatMinute(minute int) string {
	if minute < 0 || minute == MinuteSentinel {
		return "--:--"
	}
	h := minute / 60
	m := minute % 60
	return pad2(h) + ":" + pad2(m)
}

func pad2(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

// NormalizePin converts a raw, possibly legacy-shaped record into the
// canonical pin variant. Explicit fields are kept; absent ones are derived:
//
//   - kind: legacy type "poi" becomes poi, anything else disaster
//   - category: legacy types earthquake/landslide map through, the rest other
//   - channel: defaults to action
//   - date: defaults to the current local date
//
// Business logic downstream never sees the legacy shape.
func NormalizePin(p models.Pin) models.Pin {
	if p.Kind == "" {
		if p.LegacyType == "poi" {
			p.Kind = models.KindPOI
		} else {
			p.Kind = models.KindDisaster
		}
	}
	if p.Category == "" {
		switch p.LegacyType {
		case "earthquake":
			p.Category = models.CategoryEarthquake
		case "landslide":
			p.Category = models.CategoryLandslide
		default:
			p.Category = models.CategoryOther
		}
	}
	if p.Channel == "" {
		p.Channel = models.ChannelAction
	}
	if p.Date == "" {
		p.Date = now().Format(models.DateLayout)
	}
	return p
}

// BuildPins merges server events with points of interest into one normalized
// pin list sorted ascending by minute-of-day. Untimed pins sort last.
func BuildPins(events []models.Event, pois []models.Pin) []models.Pin {
	merged := make([]models.Pin, 0, len(events)+len(pois))
	for _, e := range events {
		merged = append(merged, NormalizePin(e.Pin()))
	}
	for _, p := range pois {
		merged = append(merged, NormalizePin(p))
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return MinuteOfDay(merged[i].Time) < MinuteOfDay(merged[j].Time)
	})
	return merged
}

// FilterPins applies the category gate and, when replay is enabled, the
// time cutoff. Pure and order-preserving.
//
// A pin passes the category gate when it has no category or its category is
// enabled. Under replay, a pin additionally passes only when it has no time
// or occurs at or before currentMinute.
func FilterPins(pins []models.Pin, enabled map[models.Category]bool, replay bool, currentMinute int) []models.Pin {
	out := make([]models.Pin, 0, len(pins))
	for _, p := range pins {
		if p.Category != "" && !enabled[p.Category] {
			continue
		}
		if replay && p.Time != "" && MinuteOfDay(p.Time) > currentMinute {
			continue
		}
		out = append(out, p)
	}
	return out
}

// MinuteRange reports the minute-of-day span covered by the timed events,
// falling back to 13:00-18:00 when none carry a time.
func MinuteRange(events []models.Event) (min, max int) {
	min, max = MinuteSentinel, -1
	for _, e := range events {
		if e.Time == "" {
			continue
		}
		m := MinuteOfDay(e.Time)
		if m == MinuteSentinel {
			continue
		}
		if m < min {
			min = m
		}
		if m > max {
			max = m
		}
	}
	if max < 0 {
		return 13 * 60, 18 * 60
	}
	return min, max
}
