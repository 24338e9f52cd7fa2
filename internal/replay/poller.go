// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

package replay

import (
	"sync"
	"time"
)

// Poller invokes a callback at a fixed interval until stopped. The callback
// runs synchronously inside the poll loop, so two ticks of the same poller
// never overlap; whatever the callback starts (an HTTP fetch, say) may still
// straddle intervals on its own.
type Poller struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartPoller schedules fn every interval. The first invocation happens one
// interval after start, not immediately. The returned handle must be stopped
// on teardown.
func StartPoller(interval time.Duration, fn func()) *Poller {
	p := &Poller{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-p.stop:
				return
			}
		}
	}()
	return p
}

// Stop cancels the schedule and waits for any in-flight callback to finish.
// Idempotent.
func (p *Poller) Stop() {
	p.once.Do(func() { close(p.stop) })
	<-p.done
}
