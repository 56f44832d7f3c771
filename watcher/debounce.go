// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package watcher

import (
	"sync"
	"time"
)

// Debouncer delays a callback until its key has been quiet for the interval.
// Each trigger for a key restarts that key's timer and replaces its callback.
type Debouncer struct {
	interval time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewDebouncer returns a debouncer with the given quiet period.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		timers:   make(map[string]*time.Timer),
	}
}

// Trigger schedules fn to run once key has been quiet for the interval.
// It does nothing after Stop.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		if d.stopped || d.timers[key] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
	d.timers[key] = timer
}

// Pending is the number of keys waiting for their quiet period to end.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Stop cancels every pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
}
