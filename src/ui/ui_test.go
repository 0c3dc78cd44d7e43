// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package ui

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/kulturhaus/kulturhaus/src/actions"
	"github.com/kulturhaus/kulturhaus/src/channels"
	"github.com/kulturhaus/kulturhaus/src/dashboard"
	"github.com/kulturhaus/kulturhaus/src/dashboard/board"
	"github.com/kulturhaus/kulturhaus/src/menus"
	"github.com/kulturhaus/kulturhaus/src/notify"
	"github.com/kulturhaus/kulturhaus/src/quickaction"
	"github.com/kulturhaus/kulturhaus/src/tools/schedule"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2025, 4, 10, 10, 0, 0, 0, time.UTC)

func sample() dashboard.Snapshot {
	return dashboard.Snapshot{
		Members: dashboard.MembersSection{
			Active: 1234,
			Delta:  -3,
			QuarterlyChurn: []dashboard.ChurnEntry{
				{Quarter: "Q4 2024", New: 5, Lost: 8, Net: -3},
			},
		},
		Sepa: dashboard.SepaSection{NextDate: "2025-04-15", Amount: 1725, Status: dashboard.SepaReady},
		Events: dashboard.EventsSection{
			NextEvent:      "Jazzabend",
			EventDate:      "2025-04-11 19:30:00",
			TicketsSold:    45,
			Capacity:       60,
			MonthlyRevenue: 3200.5,
		},
		Website: dashboard.WebsiteSection{QuarterlyVisitors: 12500, ChangePercent: 12.5},
		Social:  dashboard.SocialSection{InstagramFollowers: 980, EngagementRate: 4.2, LastPost: "2025-04-09 10:00:00"},
	}
}

type fakeFetcher struct {
	sync.Mutex
	snap    dashboard.Snapshot
	section json.RawMessage
}

func (f *fakeFetcher) Fetch(ctx context.Context) (dashboard.Snapshot, error) {
	f.Lock()
	defer f.Unlock()
	return f.snap, nil
}

func (f *fakeFetcher) FetchSection(ctx context.Context, name dashboard.SectionName) (json.RawMessage, error) {
	f.Lock()
	defer f.Unlock()
	return f.section, nil
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestRender(t *testing.T) {
	Convey("Testing section rendering", t, func() {
		snap := sample()
		d := New(Config{Lang: "de", Now: func() time.Time { return now }})
		d.render(board.Ready, snap, now)
		text := func(name dashboard.SectionName) string {
			return d.sections[name].GetText(true)
		}
		Convey("Members show count, delta and churn", func() {
			So(text(dashboard.Members), ShouldEqual, "Aktive Mitglieder: 1.234\nVeränderung: -3\n  Q4 2024  +5 -8  -3\n")
		})
		Convey("SEPA shows the next collection", func() {
			So(text(dashboard.Sepa), ShouldEqual, "Nächster Einzug: 15.04.2025 (In 5 Tagen)\nBetrag: 1.725,00 €\nStatus: Bereit\n")
		})
		Convey("Events show the next event and the revenue", func() {
			So(text(dashboard.Events), ShouldEqual, "Nächste Veranstaltung: Jazzabend, Fr., 11.04., 19:30 (In 2 Tagen)\n"+
				"Tickets: 45 / 60 (75 %)\nUmsatz diesen Monat: 3.200,50 €\n")
			So(EventsText(dashboard.EventsSection{}, now, "en"), ShouldEqual, "No events planned\n[::b]Revenue this month:[::-] 0,00 €\n")
		})
		Convey("Website and social media", func() {
			So(text(dashboard.Website), ShouldEqual, "Besucher im Quartal: 12.500 +12,5 %\n")
			So(text(dashboard.Social), ShouldEqual, "Instagram-Follower: 980\nEngagement-Rate: 4,2 %\nLetzter Beitrag: Gestern\n")
		})
		Convey("Status line", func() {
			So(d.status.GetText(true), ShouldEqual, "Aktuell  Letzte Aktualisierung: 10:00:00")
			So(StatusText(board.Failed, time.Time{}, "en"), ShouldEqual, "[red]Error loading dashboard data[-]")
			So(StatusText(board.Idle, time.Time{}, "de"), ShouldEqual, "[gray]Nicht gestartet[-]")
		})
		Convey("Notifications are listed newest first", func() {
			notes := []notify.Notification{
				{Message: "first", Severity: notify.Info, Time: now},
				{Message: "second", Severity: notify.Danger, Time: now.Add(time.Minute)},
			}
			So(NotificationsText(notes), ShouldEqual, "10:01:00 [red]second[-]\n10:00:00 [white]first[-]\n")
		})
	})
}

func TestDashboard(t *testing.T) {
	Convey("Testing the terminal dashboard", t, func() {
		menus.BootStrap()
		fetcher := &fakeFetcher{snap: sample(), section: json.RawMessage(`{"next_date":"2025-05-15","amount":1800,"status":"issues"}`)}
		nav := new(actions.Recorder)
		timers := new(schedule.ManualTimers)
		d := New(Config{Lang: "de", Navigator: nav, Now: func() time.Time { return now }})
		b := board.New(fetcher, board.Config{
			AfterFunc: timers.AfterFunc,
			Notifier:  d,
			Lang:      "de",
			OnChange:  d.Update,
			Now:       func() time.Time { return now },
		})
		d.SetBoard(b)
		defer b.Stop()

		Convey("Before loading, the empty snapshot is shown", func() {
			So(d.status.GetText(true), ShouldEqual, "Nicht gestartet")
			So(d.sections[dashboard.Sepa].GetText(true), ShouldContainSubstring, "Status: Ausstehend")
		})
		Convey("r loads the dashboard", func() {
			So(d.handleKey(key('r')), ShouldBeNil)
			d.jobs.Wait()
			So(b.State(), ShouldEqual, board.Ready)
			So(d.status.GetText(true), ShouldEqual, "Aktuell  Letzte Aktualisierung: 10:00:00")
			So(d.sections[dashboard.Members].GetText(true), ShouldContainSubstring, "1.234")

			Convey("2 refreshes the SEPA section", func() {
				So(d.handleKey(key('2')), ShouldBeNil)
				d.jobs.Wait()
				So(d.sections[dashboard.Sepa].GetText(true), ShouldContainSubstring, "Status: Probleme")
				So(d.notes.GetText(true), ShouldContainSubstring, "SEPA aktualisiert")
			})
			Convey("State errors are notified", func() {
				b.Stop()
				d.handleKey(key('r'))
				d.jobs.Wait()
				So(d.notes.GetText(true), ShouldContainSubstring, "Das Dashboard wurde beendet")
			})
		})
		Convey("m opens the members", func() {
			So(d.handleKey(key('m')), ShouldBeNil)
			opened := nav.Opened()
			So(opened, ShouldHaveLength, 1)
			So(opened[0].Model, ShouldEqual, "res.partner")
			So(opened[0].Name, ShouldEqual, "Mitglieder")
		})
		Convey("Other keys are passed through", func() {
			ev := key('x')
			So(d.handleKey(ev), ShouldEqual, ev)
		})
		Convey("Quick actions are disabled without submitter", func() {
			d.handleKey(key('i'))
			So(d.input.HasFocus(), ShouldBeFalse)
		})
		Convey("Blank messages keep the input open", func() {
			posted := 0
			dispatcher := channels.NewDispatcher("de")
			dispatcher.Register(quickaction.InstagramPost, channels.PosterFunc(func(ctx context.Context, message string) error {
				posted++
				return nil
			}))
			d.SetSubmitter(quickaction.NewSubmitter(dispatcher, d, "de"))
			d.handleKey(key('i'))
			d.input.SetText("   ")
			d.inputDone(tcell.KeyEnter)
			d.jobs.Wait()
			So(d.input.HasFocus(), ShouldBeTrue)
			So(d.notes.GetText(true), ShouldContainSubstring, "Bitte geben Sie eine Nachricht ein")
			So(posted, ShouldEqual, 0)
		})
		Convey("Quick actions are sent through the dispatcher", func() {
			var (
				mu   sync.Mutex
				sent []string
			)
			dispatcher := channels.NewDispatcher("de")
			dispatcher.Register(quickaction.TelegramMessage, channels.PosterFunc(func(ctx context.Context, message string) error {
				mu.Lock()
				defer mu.Unlock()
				sent = append(sent, message)
				return nil
			}))
			d.SetSubmitter(quickaction.NewSubmitter(dispatcher, d, "de"))

			So(d.handleKey(key('t')), ShouldBeNil)
			So(d.input.HasFocus(), ShouldBeTrue)
			So(d.input.GetLabel(), ShouldEqual, "Nachricht an Telegram: ")
			ev := key('r')
			So(d.handleKey(ev), ShouldEqual, ev)

			d.input.SetText("  Probe heute um 18 Uhr ")
			d.inputDone(tcell.KeyEnter)
			d.jobs.Wait()
			So(d.input.HasFocus(), ShouldBeFalse)
			mu.Lock()
			So(sent, ShouldResemble, []string{"Probe heute um 18 Uhr"})
			mu.Unlock()
			So(d.notes.GetText(true), ShouldContainSubstring, "An Telegram gesendet")

			Convey("Escape closes the input without sending", func() {
				d.handleKey(key('i'))
				d.input.SetText("Hallo")
				d.inputDone(tcell.KeyEscape)
				So(d.input.HasFocus(), ShouldBeFalse)
				mu.Lock()
				So(sent, ShouldHaveLength, 1)
				mu.Unlock()
			})
		})
	})
}

// onLoop runs f on the event loop of d and reports whether it ran in time
func onLoop(d *Dashboard, f func()) bool {
	done := make(chan struct{})
	go func() {
		d.app.QueueUpdate(f)
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(3 * time.Second):
		return false
	}
}

// eventually polls cond on the event loop until it holds or times out
func eventually(d *Dashboard, cond func() bool) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		var ok bool
		if !onLoop(d, func() { ok = cond() }) {
			return false
		}
		if ok {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestDashboardRun(t *testing.T) {
	Convey("Testing the dashboard event loop", t, func() {
		menus.BootStrap()
		screen := tcell.NewSimulationScreen("UTF-8")
		fetcher := &fakeFetcher{snap: sample()}
		nav := actions.NavigatorFunc(func(*actions.Action) error {
			return errors.New("kein Browser gefunden")
		})
		d := New(Config{Lang: "de", Navigator: nav, Screen: screen, FPS: 100, Now: func() time.Time { return now }})
		b := board.New(fetcher, board.Config{
			AfterFunc: new(schedule.ManualTimers).AfterFunc,
			Notifier:  d,
			Lang:      "de",
			OnChange:  d.Update,
			Now:       func() time.Time { return now },
		})
		d.SetBoard(b)

		gate, entered := make(chan struct{}), make(chan string, 1)
		dispatcher := channels.NewDispatcher("de")
		dispatcher.Register(quickaction.TelegramMessage, channels.PosterFunc(func(ctx context.Context, message string) error {
			entered <- message
			<-gate
			return nil
		}))
		d.SetSubmitter(quickaction.NewSubmitter(dispatcher, d, "de"))

		press := func(key tcell.Key, runes string) {
			if key != tcell.KeyRune {
				screen.InjectKey(key, 0, tcell.ModNone)
				return
			}
			for _, r := range runes {
				screen.InjectKey(tcell.KeyRune, r, tcell.ModNone)
			}
		}
		notes := func(substr string) func() bool {
			return func() bool {
				return strings.Contains(d.notes.GetText(true), substr)
			}
		}

		done := make(chan error, 1)
		go func() { done <- d.Run(context.Background()) }()
		select {
		case <-d.drawn:
		case <-time.After(3 * time.Second):
			t.Fatal("dashboard not drawn")
		}
		So(eventually(d, func() bool {
			return strings.Contains(d.sections[dashboard.Members].GetText(true), "1.234")
		}), ShouldBeTrue)

		press(tcell.KeyRune, "thallo")
		press(tcell.KeyEnter, "")
		var sent string
		select {
		case sent = <-entered:
		case <-time.After(3 * time.Second):
		}
		So(sent, ShouldEqual, "hallo")

		Convey("A second message while one is pending keeps the loop responsive", func() {
			press(tcell.KeyRune, "tzweite")
			press(tcell.KeyEnter, "")
			So(eventually(d, notes("Eine Nachricht wird bereits gesendet")), ShouldBeTrue)
			So(onLoop(d, func() {}), ShouldBeTrue)
			var open bool
			So(onLoop(d, func() { open = d.input.HasFocus() }), ShouldBeTrue)
			So(open, ShouldBeTrue)

			press(tcell.KeyEscape, "")
			So(eventually(d, func() bool { return !d.input.HasFocus() }), ShouldBeTrue)

			Convey("Navigation errors are notified", func() {
				press(tcell.KeyRune, "m")
				So(eventually(d, notes("kein Browser gefunden")), ShouldBeTrue)
				So(onLoop(d, func() {}), ShouldBeTrue)

				Convey("Background notifications are drawn and q quits", func() {
					close(gate)
					So(eventually(d, notes("An Telegram gesendet")), ShouldBeTrue)
					press(tcell.KeyRune, "q")
					select {
					case err := <-done:
						So(err, ShouldBeNil)
					case <-time.After(3 * time.Second):
						t.Fatal("dashboard did not quit")
					}
					So(b.Stopped(), ShouldBeTrue)
				})
			})
		})
	})
}
