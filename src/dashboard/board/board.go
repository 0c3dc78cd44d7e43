// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package board holds the state machine of the admin dashboard.
//
// A Board loads a dashboard snapshot when started, then refreshes it
// periodically. Full and section refreshes are mutually exclusive: a
// single in-flight flag guards them. Results that arrive after Stop
// are discarded and the Board goes back to the state of its last
// completed refresh.
package board

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kulturhaus/kulturhaus/src/dashboard"
	"github.com/kulturhaus/kulturhaus/src/i18n"
	"github.com/kulturhaus/kulturhaus/src/notify"
	"github.com/kulturhaus/kulturhaus/src/tools/exceptions"
	"github.com/kulturhaus/kulturhaus/src/tools/logging"
	"github.com/kulturhaus/kulturhaus/src/tools/schedule"
)

var log logging.Logger

// DefaultInterval is the time between the end of a refresh and the next one
const DefaultInterval = 30 * time.Second

// A State of the Board
type State int

// Board states
const (
	Idle State = iota
	Loading
	Ready
	Refreshing
	Failed
)

// String returns the i18n key suffix of the state
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Refreshing:
		return "refreshing"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// A Fetcher retrieves dashboard data
type Fetcher interface {
	Fetch(ctx context.Context) (dashboard.Snapshot, error)
	FetchSection(ctx context.Context, name dashboard.SectionName) (json.RawMessage, error)
}

// Config holds the optional settings of a Board
type Config struct {
	// Interval between two refreshes. Defaults to DefaultInterval.
	Interval time.Duration
	// Timeout of the scheduled refreshes. Zero means no timeout.
	Timeout time.Duration
	// AfterFunc defaults to schedule.RealAfterFunc
	AfterFunc schedule.AfterFunc
	// Notifier defaults to notify.Discard
	Notifier notify.Notifier
	// Lang of the messages
	Lang string
	// OnChange is called outside of any lock after each state change
	OnChange func(State, dashboard.Snapshot)
	// Now defaults to time.Now
	Now func() time.Time
}

// A Board is the dashboard state machine
type Board struct {
	sync.Mutex
	fetcher    Fetcher
	config     Config
	entry      *schedule.Entry
	state      State
	snapshot   dashboard.Snapshot
	lastErr    error
	lastUpdate time.Time
	inFlight   bool
	started    bool
	stopped    bool
}

// New returns an Idle Board that reads its data from fetcher
func New(fetcher Fetcher, config Config) *Board {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.Notifier == nil {
		config.Notifier = notify.Discard
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	b := &Board{
		fetcher:  fetcher,
		config:   config,
		snapshot: dashboard.EmptySnapshot(),
	}
	b.entry = schedule.NewEntry(schedule.EntryDesc{
		Name:      "dashboard refresh",
		Every:     config.Interval,
		Do:        b.tick,
		AfterFunc: config.AfterFunc,
	})
	return b
}

// Start loads the dashboard and schedules the periodic refresh,
// whatever the outcome of the load. It returns the load error, if any.
//
// A Board can be started only once.
func (b *Board) Start(ctx context.Context) error {
	b.Lock()
	switch {
	case b.stopped:
		b.Unlock()
		return b.stateError(exceptions.Stopped, "dashboard.stopped")
	case b.started:
		b.Unlock()
		return b.stateError(exceptions.Busy, "dashboard.busy")
	}
	b.started = true
	b.inFlight = true
	b.state = Loading
	b.Unlock()
	b.changed()

	err := b.load(ctx)

	b.Lock()
	if !b.stopped {
		b.entry.Start()
	}
	b.Unlock()
	return err
}

// RefreshAll reloads the whole dashboard and restarts the refresh timer.
// It is only allowed from the Ready and Failed states, and returns a
// Busy StateError while another refresh is in flight. RefreshAll on an
// Idle Board is the same as Start.
func (b *Board) RefreshAll(ctx context.Context) error {
	b.Lock()
	switch {
	case b.stopped:
		b.Unlock()
		return b.stateError(exceptions.Stopped, "dashboard.stopped")
	case !b.started:
		b.Unlock()
		return b.Start(ctx)
	case b.inFlight || b.state == Loading:
		b.Unlock()
		return b.stateError(exceptions.Busy, "dashboard.busy")
	}
	b.inFlight = true
	b.state = Refreshing
	b.Unlock()
	b.changed()

	err := b.load(ctx)

	b.Lock()
	if !b.stopped {
		b.entry.Reset()
	}
	b.Unlock()
	return err
}

// RefreshSection reloads a single section of the dashboard.
//
// An unknown section name returns an InvalidSection StateError without
// any state change nor network call.
func (b *Board) RefreshSection(ctx context.Context, section string) error {
	name, ok := dashboard.ParseSectionName(section)
	if !ok {
		return exceptions.New(exceptions.StateError, exceptions.InvalidSection,
			i18n.T(b.config.Lang, "dashboard.invalid_section", section))
	}
	b.Lock()
	switch {
	case b.stopped:
		b.Unlock()
		return b.stateError(exceptions.Stopped, "dashboard.stopped")
	case !b.started || b.inFlight || b.state == Loading:
		b.Unlock()
		return b.stateError(exceptions.Busy, "dashboard.busy")
	}
	b.inFlight = true
	b.state = Refreshing
	b.Unlock()
	b.changed()

	data, err := b.fetcher.FetchSection(ctx, name)

	b.Lock()
	b.inFlight = false
	if b.stopped {
		b.state = b.settled()
		b.Unlock()
		log.Debug("Discarding section refresh result of stopped dashboard", "section", name)
		return nil
	}
	if err == nil {
		var snap dashboard.Snapshot
		snap, err = b.snapshot.WithSection(name, data)
		if err == nil {
			b.snapshot = snap
			b.state = Ready
			b.lastErr = nil
			b.lastUpdate = b.config.Now()
			b.Unlock()
			b.changed()
			title := i18n.T(b.config.Lang, "section."+string(name))
			b.config.Notifier.Notify(i18n.T(b.config.Lang, "dashboard.section_refreshed", title), notify.Success)
			return nil
		}
		err = exceptions.Transport(err, "invalid data for section %s", name)
	}
	err = b.fail(err)
	b.Unlock()
	log.Warn("Section refresh error", "section", name, "error", err)
	b.changed()
	b.notifyError(err)
	return err
}

// Stop cancels the periodic refresh. A refresh in flight is not
// interrupted but its result will be discarded. Stop can be called
// several times.
func (b *Board) Stop() {
	b.Lock()
	defer b.Unlock()
	if b.stopped {
		return
	}
	b.stopped = true
	b.entry.Stop()
}

// State returns the current state of the Board
func (b *Board) State() State {
	b.Lock()
	defer b.Unlock()
	return b.state
}

// Snapshot returns a copy of the last loaded snapshot
func (b *Board) Snapshot() dashboard.Snapshot {
	b.Lock()
	defer b.Unlock()
	return b.snapshot.Clone()
}

// LastError returns the error of the last refresh, or nil if it succeeded
func (b *Board) LastError() error {
	b.Lock()
	defer b.Unlock()
	return b.lastErr
}

// LastUpdate returns the time of the last successful refresh
func (b *Board) LastUpdate() time.Time {
	b.Lock()
	defer b.Unlock()
	return b.lastUpdate
}

// Stopped returns true if Stop has been called
func (b *Board) Stopped() bool {
	b.Lock()
	defer b.Unlock()
	return b.stopped
}

// Scheduled returns true if a periodic refresh is pending
func (b *Board) Scheduled() bool {
	return b.entry.Scheduled()
}

// tick is the periodic refresh. It is skipped if another
// refresh is in flight.
func (b *Board) tick() {
	b.Lock()
	if b.stopped || b.inFlight {
		b.Unlock()
		return
	}
	b.inFlight = true
	b.state = Refreshing
	b.Unlock()
	b.changed()

	ctx := context.Background()
	if b.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.Timeout)
		defer cancel()
	}
	if err := b.load(ctx); err != nil {
		log.Debug("Scheduled dashboard refresh failed", "error", err)
	}
}

// load fetches the whole snapshot and applies the result.
// The caller must have set the in-flight flag.
func (b *Board) load(ctx context.Context) error {
	snap, err := b.fetcher.Fetch(ctx)

	b.Lock()
	b.inFlight = false
	if b.stopped {
		b.state = b.settled()
		b.Unlock()
		log.Debug("Discarding dashboard data of stopped dashboard")
		return nil
	}
	if err != nil {
		err = b.fail(err)
		b.Unlock()
		log.Warn("Dashboard load error", "error", err, "debug", debugOf(err))
		b.changed()
		b.notifyError(err)
		return err
	}
	b.snapshot = snap.Normalize()
	b.state = Ready
	b.lastErr = nil
	b.lastUpdate = b.config.Now()
	b.Unlock()
	b.changed()
	return nil
}

// fail moves the Board to the Failed state and returns the user
// facing version of err. Must be called with the lock held.
func (b *Board) fail(err error) error {
	if _, ok := exceptions.As(err); !ok {
		err = exceptions.Wrap(err, exceptions.TransportError, exceptions.Unreachable, i18n.T(b.config.Lang, "dashboard.failed"))
	}
	b.state = Failed
	b.lastErr = err
	return err
}

// settled returns the state of the last completed refresh: Failed if it
// failed, Ready if a snapshot was loaded and Idle otherwise.
// The caller must hold the lock.
func (b *Board) settled() State {
	switch {
	case b.lastErr != nil:
		return Failed
	case !b.lastUpdate.IsZero():
		return Ready
	default:
		return Idle
	}
}

// changed calls the OnChange callback with the current state
func (b *Board) changed() {
	if b.config.OnChange == nil {
		return
	}
	b.Lock()
	state, snap := b.state, b.snapshot.Clone()
	b.Unlock()
	b.config.OnChange(state, snap)
}

func (b *Board) notifyError(err error) {
	ue, ok := exceptions.As(err)
	if !ok {
		b.config.Notifier.Notify(err.Error(), notify.Danger)
		return
	}
	b.config.Notifier.Notify(ue.Message, ue.Severity)
}

func (b *Board) stateError(reason exceptions.Reason, key string) error {
	return exceptions.New(exceptions.StateError, reason, i18n.T(b.config.Lang, key))
}

func debugOf(err error) string {
	if ue, ok := exceptions.As(err); ok {
		return ue.Debug
	}
	return ""
}

func init() {
	log = logging.GetLogger("board")
}
