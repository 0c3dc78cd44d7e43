// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package schedule

import (
	"sync"
	"time"
)

// ManualTimers is an AfterFunc implementation whose timers only fire
// when Fire is called. It is meant for tests.
type ManualTimers struct {
	sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	owner   *ManualTimers
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

// Stop cancels the timer. It returns false if the timer had already fired or been stopped.
func (t *manualTimer) Stop() bool {
	t.owner.Lock()
	defer t.owner.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// AfterFunc registers f to be called on the next Fire
func (m *ManualTimers) AfterFunc(d time.Duration, f func()) Timer {
	m.Lock()
	defer m.Unlock()
	t := &manualTimer{owner: m, delay: d, f: f}
	m.timers = append(m.timers, t)
	return t
}

// Pending returns the number of timers that have neither fired nor been stopped
func (m *ManualTimers) Pending() int {
	m.Lock()
	defer m.Unlock()
	var res int
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			res++
		}
	}
	return res
}

// LastDelay returns the delay of the most recently created timer
func (m *ManualTimers) LastDelay() time.Duration {
	m.Lock()
	defer m.Unlock()
	if len(m.timers) == 0 {
		return 0
	}
	return m.timers[len(m.timers)-1].delay
}

// Fire synchronously calls all pending timers and returns how many fired.
// Timers created while firing are left pending.
func (m *ManualTimers) Fire() int {
	m.Lock()
	var due []*manualTimer
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	m.Unlock()
	for _, t := range due {
		t.f()
	}
	return len(due)
}
