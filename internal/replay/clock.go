// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

// Package replay provides the time-scrubbing replay clock and a generic
// fixed-interval poller. Both follow an explicit schedule-and-cancel
// contract: stopping blocks until the loop has exited, and at most one tick
// callback executes at a time.
package replay

import (
	"sync"
	"time"
)

// Clock is the replay state machine. It has two states, stopped and playing,
// toggled by Play/Stop. While playing, each tick advances the current minute
// by one; past the maximum it wraps to the minimum (cyclic replay, not
// clamped). The minute may be set directly at any time regardless of state.
type Clock struct {
	mu       sync.Mutex
	min, max int
	current  int
	interval time.Duration

	playing bool
	stop    chan struct{}
	done    chan struct{}

	// onTick, when set, observes every advanced minute. Called from the tick
	// goroutine without the clock lock held.
	onTick func(minute int)
}

// DefaultTickInterval matches the original replay cadence.
const DefaultTickInterval = 700 * time.Millisecond

// NewClock creates a stopped clock positioned at min.
func NewClock(min, max int, interval time.Duration) *Clock {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if max < min {
		max = min
	}
	return &Clock{min: min, max: max, current: min, interval: interval}
}

// OnTick registers an observer for advanced minutes. Must be called before
// Play.
func (c *Clock) OnTick(fn func(minute int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTick = fn
}

// Play transitions stopped→playing. No-op while already playing.
func (c *Clock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return
	}
	c.playing = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(c.stop, c.done)
}

// Stop transitions playing→stopped, cancelling the recurring tick with no
// residual effect. Blocks until the tick loop has exited. No-op while
// stopped.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}
	c.playing = false
	stop, done := c.stop, c.done
	c.mu.Unlock()

	close(stop)
	<-done
}

// Toggle flips between stopped and playing, returning the new playing state.
func (c *Clock) Toggle() bool {
	if c.Playing() {
		c.Stop()
		return false
	}
	c.Play()
	return true
}

// Playing reports whether the clock is in the playing state.
func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Current returns the current minute of day.
func (c *Clock) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// SetMinute scrubs directly to a minute, clamped to the configured range.
// Allowed in any state.
func (c *Clock) SetMinute(minute int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.clamp(minute)
}

// Step moves the minute by delta (e.g. the ±10 scrub buttons), clamped.
func (c *Clock) Step(delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.clamp(c.current + delta)
	return c.current
}

// SetRange reconfigures the minute bounds, clamping the current position.
func (c *Clock) SetRange(min, max int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if max < min {
		max = min
	}
	c.min, c.max = min, max
	c.current = c.clamp(c.current)
}

// Range returns the configured minute bounds.
func (c *Clock) Range() (min, max int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.min, c.max
}

func (c *Clock) clamp(m int) int {
	if m < c.min {
		return c.min
	}
	if m > c.max {
		return c.max
	}
	return m
}

// run is the tick loop. One goroutine per Play, so ticks never overlap.
func (c *Clock) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			minute, observer := c.advance()
			if observer != nil {
				observer(minute)
			}
		case <-stop:
			return
		}
	}
}

// advance moves one minute forward, wrapping past max to min.
func (c *Clock) advance() (int, func(int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.current + 1
	if next > c.max {
		next = c.min
	}
	c.current = next
	return next, c.onTick
}
