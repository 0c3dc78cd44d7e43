// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package ui

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/kulturhaus/kulturhaus/src/actions"
	"github.com/kulturhaus/kulturhaus/src/dashboard"
	"github.com/kulturhaus/kulturhaus/src/dashboard/board"
	"github.com/kulturhaus/kulturhaus/src/i18n"
	"github.com/kulturhaus/kulturhaus/src/menus"
	"github.com/kulturhaus/kulturhaus/src/notify"
	"github.com/kulturhaus/kulturhaus/src/quickaction"
	"github.com/kulturhaus/kulturhaus/src/tools/exceptions"
	"github.com/kulturhaus/kulturhaus/src/tools/logging"
	"github.com/rivo/tview"
)

var log logging.Logger

// Config holds the collaborators of a Dashboard
type Config struct {
	Lang string
	// Navigator receives the actions of the menus opened with their
	// shortcut key. Defaults to an actions.LinkNavigator that only logs.
	Navigator actions.Navigator
	// Notifications size. Defaults to 8.
	Notifications int
	// Now defaults to time.Now
	Now func() time.Time
	// FPS caps the redraws requested by the board and the submitter.
	// Defaults to 30.
	FPS int
	// Screen replaces the terminal, for tests
	Screen tcell.Screen
}

// A Dashboard is the terminal rendition of a board.Board
type Dashboard struct {
	sync.Mutex
	app      *tview.Application
	root     *tview.Flex
	sections map[dashboard.SectionName]*tview.TextView
	status   *tview.TextView
	notes    *tview.TextView
	input    *tview.InputField
	buffer   *notify.Buffer
	config   Config
	board    *board.Board
	submit   *quickaction.Submitter
	channel  quickaction.Channel
	ctx      context.Context
	frames   *frameScheduler
	running  atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once
	drawn    chan struct{}
	drawOnce sync.Once
	jobs     sync.WaitGroup
}

// New returns a Dashboard. The board is attached with SetBoard.
func New(config Config) *Dashboard {
	if config.Navigator == nil {
		config.Navigator = actions.LinkNavigator{}
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Notifications <= 0 {
		config.Notifications = 8
	}
	d := &Dashboard{
		app:      tview.NewApplication(),
		sections: make(map[dashboard.SectionName]*tview.TextView),
		buffer:   notify.NewBuffer(config.Notifications),
		config:   config,
		ctx:      context.Background(),
		drawn:    make(chan struct{}),
	}
	if config.Screen != nil {
		d.app.SetScreen(config.Screen)
	}
	d.frames = newFrameScheduler(d.app, config.FPS, 0)
	grid := tview.NewFlex()
	left := tview.NewFlex().SetDirection(tview.FlexRow)
	right := tview.NewFlex().SetDirection(tview.FlexRow)
	for i, name := range dashboard.SectionNames {
		tv := newPanel(i18n.T(config.Lang, "section."+string(name)))
		d.sections[name] = tv
		if i < 3 {
			left.AddItem(tv, 0, 1, false)
		} else {
			right.AddItem(tv, 0, 1, false)
		}
	}
	d.notes = newPanel(i18n.T(config.Lang, "dashboard.notifications"))
	right.AddItem(d.notes, 0, 2, false)
	grid.AddItem(left, 0, 1, false).AddItem(right, 0, 1, false)

	d.status = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	help := tview.NewTextView().SetWrap(false).SetText(i18n.T(config.Lang, "dashboard.help"))
	help.SetTextColor(tcell.ColorGray)

	d.input = tview.NewInputField()
	d.input.SetDoneFunc(d.inputDone)

	d.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.status, 1, 0, false).
		AddItem(grid, 0, 1, false).
		AddItem(help, 1, 0, false)
	d.root.SetTitle(i18n.T(config.Lang, "dashboard.title")).SetBorder(true)
	d.app.SetRoot(d.root, true)
	d.app.SetInputCapture(d.handleKey)
	d.app.SetAfterDrawFunc(func(tcell.Screen) {
		d.drawOnce.Do(func() { close(d.drawn) })
	})
	d.render(board.Idle, dashboard.EmptySnapshot(), time.Time{})
	return d
}

func newPanel(title string) *tview.TextView {
	tv := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	tv.SetBorder(true).SetTitle(" " + title + " ")
	return tv
}

// SetBoard attaches b to the dashboard. b must have been created with
// Update as OnChange callback and d as Notifier.
func (d *Dashboard) SetBoard(b *board.Board) {
	d.Lock()
	defer d.Unlock()
	d.board = b
}

// SetSubmitter enables the quick actions, sent through s. s should
// report to d.
func (d *Dashboard) SetSubmitter(s *quickaction.Submitter) {
	d.Lock()
	defer d.Unlock()
	d.submit = s
}

func (d *Dashboard) getSubmitter() *quickaction.Submitter {
	d.Lock()
	defer d.Unlock()
	return d.submit
}

// Notify adds a notification and redraws the notification pane.
// It never blocks and may be called from any goroutine.
func (d *Dashboard) Notify(message string, severity notify.Severity) {
	d.buffer.Notify(message, severity)
	d.draw("notes", d.drawNotes)
}

// notifyNow adds a notification from the event loop
func (d *Dashboard) notifyNow(message string, severity notify.Severity) {
	d.buffer.Notify(message, severity)
	d.drawNotes()
}

func (d *Dashboard) drawNotes() {
	d.notes.SetText(NotificationsText(d.buffer.Items()))
}

// Update redraws the dashboard with the given board state and snapshot
func (d *Dashboard) Update(state board.State, snap dashboard.Snapshot) {
	var last time.Time
	if b := d.getBoard(); b != nil {
		last = b.LastUpdate()
	}
	d.draw("board", func() {
		d.render(state, snap, last)
	})
}

// Run starts the board and blocks until the user quits or ctx is done.
// The board is stopped when Run returns. A Dashboard runs only once.
func (d *Dashboard) Run(ctx context.Context) error {
	b := d.getBoard()
	if b == nil {
		return exceptions.New(exceptions.StateError, exceptions.Busy, "no board attached to the dashboard")
	}
	if d.stopped.Load() {
		return exceptions.New(exceptions.StateError, exceptions.Stopped, i18n.T(d.config.Lang, "dashboard.stopped"))
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	d.Lock()
	d.ctx = ctx
	d.Unlock()
	exited := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-exited:
			return
		}
		// The application can only be stopped once its screen is up
		select {
		case <-d.drawn:
			d.shutdown(true)
		case <-exited:
		}
	}()

	d.running.Store(true)
	d.frames.Start()
	d.background(b.Start)
	err := d.app.Run()
	close(exited)
	cancel()
	d.shutdown(false)
	b.Stop()
	if s := d.getSubmitter(); s != nil {
		s.Cancel()
	}
	d.jobs.Wait()
	return err
}

// Stop quits a running dashboard. It must not be called from the
// handlers of the dashboard.
func (d *Dashboard) Stop() {
	d.shutdown(true)
}

// shutdown drains the scheduled updates if the event loop still runs,
// then stops the application.
func (d *Dashboard) shutdown(drain bool) {
	d.stopOnce.Do(func() {
		d.stopped.Store(true)
		d.frames.Stop(drain)
		d.app.Stop()
		d.running.Store(false)
	})
}

// draw schedules f on the event loop if the application runs, or runs it
// directly otherwise.
func (d *Dashboard) draw(id string, f func()) {
	if d.running.Load() {
		d.frames.Schedule(id, f)
		return
	}
	d.Lock()
	defer d.Unlock()
	f()
}

func (d *Dashboard) render(state board.State, snap dashboard.Snapshot, last time.Time) {
	now := d.config.Now()
	for name, tv := range d.sections {
		tv.SetText(SectionText(name, snap, now, d.config.Lang))
	}
	d.status.SetText(StatusText(state, last, d.config.Lang))
}

func (d *Dashboard) getBoard() *board.Board {
	d.Lock()
	defer d.Unlock()
	return d.board
}

// background runs job in its own goroutine with the dashboard context
func (d *Dashboard) background(job func(context.Context) error) {
	d.Lock()
	ctx := d.ctx
	d.Unlock()
	d.jobs.Add(1)
	go func() {
		defer d.jobs.Done()
		err := job(ctx)
		if exceptions.Is(err, exceptions.Busy) || exceptions.Is(err, exceptions.Stopped) {
			ue, _ := exceptions.As(err)
			d.Notify(ue.Message, ue.Severity)
		}
	}()
}

// handleKey is the input capture of the application. It runs on the
// event loop.
func (d *Dashboard) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlC {
		go d.shutdown(true)
		return nil
	}
	if d.input.HasFocus() {
		return event
	}
	b := d.getBoard()
	r := event.Rune()
	menu := menus.Registry.GetByShortcut(r)
	switch {
	case event.Key() == tcell.KeyEsc || r == 'q':
		go d.shutdown(true)
	case r == 'r' && b != nil:
		d.background(b.RefreshAll)
	case r >= '1' && r < '1'+rune(len(dashboard.SectionNames)) && b != nil:
		section := string(dashboard.SectionNames[r-'1'])
		d.background(func(ctx context.Context) error {
			return b.RefreshSection(ctx, section)
		})
	case menu != nil && menu.HasAction:
		if err := actions.Open(d.config.Navigator, menu.Action.XMLID, d.config.Lang); err != nil {
			d.notifyNow(err.Error(), notify.Danger)
		}
	case r == 'i':
		d.showInput(quickaction.InstagramPost)
	case r == 't':
		d.showInput(quickaction.TelegramMessage)
	default:
		return event
	}
	return nil
}

// showInput opens the quick action input for channel
func (d *Dashboard) showInput(channel quickaction.Channel) {
	if d.getSubmitter() == nil {
		return
	}
	d.channel = channel
	d.input.SetLabel(i18n.T(d.config.Lang, "dashboard.message", i18n.T(d.config.Lang, "channel."+channel.Operation())))
	d.input.SetText("")
	d.root.AddItem(d.input, 1, 0, true)
	d.app.SetFocus(d.input)
}

func (d *Dashboard) hideInput() {
	d.root.RemoveItem(d.input)
	d.app.SetFocus(d.root)
}

// inputDone submits the message on Enter and closes the input on Escape.
// The input stays open if the message is blank or another one is pending.
// It runs on the event loop.
func (d *Dashboard) inputDone(key tcell.Key) {
	switch key {
	case tcell.KeyEscape:
		d.hideInput()
	case tcell.KeyEnter:
		message, channel, submitter := d.input.GetText(), d.channel, d.getSubmitter()
		if strings.TrimSpace(message) == "" {
			d.notifyNow(i18n.T(d.config.Lang, "quick_action.empty_message"), notify.Warning)
			return
		}
		if _, pending := submitter.Pending(); pending {
			d.notifyNow(i18n.T(d.config.Lang, "quick_action.in_flight"), notify.Warning)
			return
		}
		d.hideInput()
		d.background(func(ctx context.Context) error {
			return submitter.Submit(ctx, channel, message)
		})
	}
}

func init() {
	log = logging.GetLogger("ui")
}
