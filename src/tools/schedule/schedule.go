// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package schedule runs periodic jobs.
//
// An Entry waits its interval after each completed run before running
// again, so that a slow job never piles up calls.
package schedule

import (
	"sync"
	"time"

	"github.com/kulturhaus/kulturhaus/src/tools/logging"
)

var log logging.Logger

// A Timer is a pending call that can be cancelled
type Timer interface {
	Stop() bool
}

// AfterFunc waits for the duration to elapse and then calls f in its own goroutine.
type AfterFunc func(d time.Duration, f func()) Timer

// RealAfterFunc is AfterFunc backed by time.AfterFunc
func RealAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// EntryDesc describes an Entry to create
type EntryDesc struct {
	Name  string
	Every time.Duration
	Do    func()
	// AfterFunc defaults to RealAfterFunc
	AfterFunc AfterFunc
}

// An Entry is a job that is run every interval after its last completed run
type Entry struct {
	sync.Mutex
	name        string
	interval    time.Duration
	f           func()
	afterFunc   AfterFunc
	timer       Timer
	generation  int
	running     bool
	lastCall    time.Time
	callAmmount int
}

// NewEntry returns a new stopped Entry from the given description.
func NewEntry(desc EntryDesc) *Entry {
	if desc.Do == nil {
		log.Panic("Only a function can be scheduled", "entry", desc.Name)
	}
	if desc.Every <= 0 {
		log.Panic("Entry interval must be positive", "entry", desc.Name, "every", desc.Every)
	}
	afterFunc := desc.AfterFunc
	if afterFunc == nil {
		afterFunc = RealAfterFunc
	}
	return &Entry{
		name:      desc.Name,
		interval:  desc.Every,
		f:         desc.Do,
		afterFunc: afterFunc,
	}
}

// Start schedules the next run of this entry one interval from now.
// Calling Start on a running entry is the same as calling Reset.
func (e *Entry) Start() {
	e.Lock()
	defer e.Unlock()
	e.running = true
	e.arm()
}

// Reset cancels the pending run of a running entry and schedules the
// next one a full interval from now. It does nothing if the entry is stopped.
func (e *Entry) Reset() {
	e.Lock()
	defer e.Unlock()
	if !e.running {
		return
	}
	e.arm()
}

// Stop cancels the pending run of this entry.
// It is safe to call Stop several times. A run that has already
// started is not interrupted but will not be rescheduled.
func (e *Entry) Stop() {
	e.Lock()
	defer e.Unlock()
	e.running = false
	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// Scheduled returns true if a next run of this entry is pending
func (e *Entry) Scheduled() bool {
	e.Lock()
	defer e.Unlock()
	return e.running && e.timer != nil
}

// LastCall returns the time of the last run and the number of runs so far
func (e *Entry) LastCall() (time.Time, int) {
	e.Lock()
	defer e.Unlock()
	return e.lastCall, e.callAmmount
}

// arm replaces the pending timer by a new one. Must be called with the lock held.
func (e *Entry) arm() {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.generation++
	gen := e.generation
	e.timer = e.afterFunc(e.interval, func() { e.run(gen) })
}

// run executes the job then reschedules the entry, unless it has been
// stopped or reset in the meantime.
func (e *Entry) run(gen int) {
	e.Lock()
	if gen != e.generation || !e.running {
		e.Unlock()
		return
	}
	e.timer = nil
	e.lastCall = time.Now()
	e.callAmmount++
	e.Unlock()

	log.Debug("Running scheduled entry", "entry", e.name)
	e.f()

	e.Lock()
	defer e.Unlock()
	if gen != e.generation || !e.running {
		return
	}
	e.arm()
}

func init() {
	log = logging.GetLogger("schedule")
}
