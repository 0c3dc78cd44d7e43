// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package ui

import (
	"sync"
	"time"

	"github.com/rivo/tview"
)

// frameScheduler coalesces the updates of other goroutines and applies
// them on the application event loop at most once per frame.
//
// Schedule never blocks. Only the scheduler goroutine waits on the event
// loop, so it must be stopped while the application still runs.
type frameScheduler struct {
	app          *tview.Application
	pending      map[string]func()
	mu           sync.Mutex
	quit         chan bool
	done         chan struct{}
	started      bool
	frameTime    time.Duration
	drainTimeout time.Duration
}

func newFrameScheduler(app *tview.Application, targetFPS int, drainTimeout time.Duration) *frameScheduler {
	if targetFPS <= 0 {
		targetFPS = 30
	}
	if drainTimeout <= 0 {
		drainTimeout = 100 * time.Millisecond
	}
	return &frameScheduler{
		app:          app,
		pending:      make(map[string]func()),
		quit:         make(chan bool, 1),
		done:         make(chan struct{}),
		frameTime:    time.Second / time.Duration(targetFPS),
		drainTimeout: drainTimeout,
	}
}

// Start launches the scheduler goroutine
func (f *frameScheduler) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started {
		return
	}
	f.started = true
	go f.run()
}

// Stop ends the scheduler and waits for its goroutine, at most
// drainTimeout. If drain is set, the pending updates are flushed first:
// the event loop must then still run, and Stop must not be called from it.
// Stop must be called only once.
func (f *frameScheduler) Stop(drain bool) {
	f.mu.Lock()
	started := f.started
	f.mu.Unlock()
	if !started {
		return
	}
	f.quit <- drain
	select {
	case <-f.done:
	case <-time.After(f.drainTimeout):
		log.Warn("UI updates not drained in time", "timeout", f.drainTimeout)
	}
}

// Schedule registers fn to be run on the event loop. A later update with
// the same id replaces a pending one.
func (f *frameScheduler) Schedule(id string, fn func()) {
	f.mu.Lock()
	f.pending[id] = fn
	f.mu.Unlock()
}

func (f *frameScheduler) run() {
	defer close(f.done)

	ticker := time.NewTicker(f.frameTime)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.flush()
		case drain := <-f.quit:
			if drain {
				f.flush()
			}
			return
		}
	}
}

func (f *frameScheduler) flush() {
	f.mu.Lock()
	if len(f.pending) == 0 {
		f.mu.Unlock()
		return
	}
	batch := make([]func(), 0, len(f.pending))
	for id, fn := range f.pending {
		batch = append(batch, fn)
		delete(f.pending, id)
	}
	f.mu.Unlock()

	f.app.QueueUpdateDraw(func() {
		for _, fn := range batch {
			fn()
		}
	})
}
