// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/kulturhaus/kulturhaus/src/dashboard"
	"github.com/kulturhaus/kulturhaus/src/dashboard/board"
	"github.com/kulturhaus/kulturhaus/src/i18n"
	"github.com/kulturhaus/kulturhaus/src/notify"
	"github.com/kulturhaus/kulturhaus/src/tools/format"
	"github.com/rivo/tview"
)

// tview color tags per display class
var classColors = map[string]string{
	"text-success": "green",
	"text-warning": "yellow",
	"text-danger":  "red",
	"text-muted":   "gray",
}

var severityColors = map[notify.Severity]string{
	notify.Info:    "white",
	notify.Success: "green",
	notify.Warning: "yellow",
	notify.Danger:  "red",
}

func colorOf(class string) string {
	for c, color := range classColors {
		if strings.Contains(class, c) {
			return color
		}
	}
	return "white"
}

func line(label, value string) string {
	return fmt.Sprintf("[::b]%s:[::-] %s\n", label, value)
}

// MembersText renders the members section
func MembersText(s dashboard.MembersSection, lang string) string {
	var b strings.Builder
	delta := fmt.Sprintf("[%s]%+d[-]", colorOf(format.DeltaIcon(s.Delta)), s.Delta)
	b.WriteString(line(i18n.T(lang, "members.active"), format.Count(int64(s.Active), lang)))
	b.WriteString(line(i18n.T(lang, "members.delta"), delta))
	for _, c := range s.QuarterlyChurn {
		fmt.Fprintf(&b, "  %s  [green]+%d[-] [red]-%d[-]  %+d\n", c.Quarter, c.New, c.Lost, c.Net)
	}
	return b.String()
}

// SepaText renders the SEPA section
func SepaText(s dashboard.SepaSection, now time.Time, lang string) string {
	var b strings.Builder
	next := format.Date(s.NextDate)
	if until := format.TimeUntil(s.NextDate, now, lang); until != "" {
		next += " (" + until + ")"
	}
	b.WriteString(line(i18n.T(lang, "sepa.next_date"), next))
	b.WriteString(line(i18n.T(lang, "sepa.amount"), format.Euro(s.Amount)))
	status := fmt.Sprintf("[%s]%s[-]", colorOf(format.SepaStatusClass(string(s.Status))),
		i18n.T(lang, "sepa.status."+string(s.Status)))
	b.WriteString(line(i18n.T(lang, "sepa.status"), status))
	return b.String()
}

// EventsText renders the events section
func EventsText(s dashboard.EventsSection, now time.Time, lang string) string {
	var b strings.Builder
	if s.NextEvent == "" {
		b.WriteString(i18n.T(lang, "dashboard.no_events") + "\n")
	} else {
		next := tview.Escape(s.NextEvent) + ", " + format.DateTime(s.EventDate)
		if until := format.TimeUntil(s.EventDate, now, lang); until != "" {
			next += " (" + until + ")"
		}
		b.WriteString(line(i18n.T(lang, "events.next"), next))
		b.WriteString(line(i18n.T(lang, "events.tickets"), fmt.Sprintf("%s / %s (%d %%)",
			format.Count(int64(s.TicketsSold), lang), format.Count(int64(s.Capacity), lang),
			format.Percent(s.TicketsSold, s.Capacity))))
	}
	b.WriteString(line(i18n.T(lang, "events.revenue"), format.Euro(s.MonthlyRevenue)))
	return b.String()
}

// WebsiteText renders the website section
func WebsiteText(s dashboard.WebsiteSection, lang string) string {
	color := "green"
	if s.ChangePercent < 0 {
		color = "red"
	}
	return line(i18n.T(lang, "website.visitors"), fmt.Sprintf("%s [%s]%s[-]",
		format.Count(int64(s.QuarterlyVisitors), lang), color, format.SignedPercent(s.ChangePercent, lang)))
}

// SocialText renders the social media section
func SocialText(s dashboard.SocialSection, now time.Time, lang string) string {
	var b strings.Builder
	b.WriteString(line(i18n.T(lang, "social.followers"), format.Count(int64(s.InstagramFollowers), lang)))
	b.WriteString(line(i18n.T(lang, "social.engagement"), strings.TrimPrefix(format.SignedPercent(s.EngagementRate, lang), "+")))
	b.WriteString(line(i18n.T(lang, "social.last_post"), format.TimeSince(s.LastPost, now, lang)))
	return b.String()
}

// SectionText renders the given section of snap
func SectionText(name dashboard.SectionName, snap dashboard.Snapshot, now time.Time, lang string) string {
	switch name {
	case dashboard.Members:
		return MembersText(snap.Members, lang)
	case dashboard.Sepa:
		return SepaText(snap.Sepa, now, lang)
	case dashboard.Events:
		return EventsText(snap.Events, now, lang)
	case dashboard.Website:
		return WebsiteText(snap.Website, lang)
	case dashboard.Social:
		return SocialText(snap.Social, now, lang)
	}
	return ""
}

// StatusText renders the state line of the dashboard
func StatusText(state board.State, lastUpdate time.Time, lang string) string {
	var label, color string
	switch state {
	case board.Idle:
		label, color = i18n.T(lang, "dashboard.idle"), "gray"
	case board.Loading:
		label, color = i18n.T(lang, "dashboard.loading"), "yellow"
	case board.Refreshing:
		label, color = i18n.T(lang, "dashboard.refreshing"), "yellow"
	case board.Ready:
		label, color = i18n.T(lang, "dashboard.ready"), "green"
	case board.Failed:
		label, color = i18n.T(lang, "dashboard.failed"), "red"
	}
	res := fmt.Sprintf("[%s]%s[-]", color, label)
	if !lastUpdate.IsZero() {
		res += "  " + i18n.T(lang, "dashboard.last_update", lastUpdate.Format("15:04:05"))
	}
	return res
}

// NotificationsText renders the notifications, newest first
func NotificationsText(notes []notify.Notification) string {
	var b strings.Builder
	for i := len(notes) - 1; i >= 0; i-- {
		n := notes[i]
		color, ok := severityColors[n.Severity]
		if !ok {
			color = "white"
		}
		fmt.Fprintf(&b, "%s [%s]%s[-]\n", n.Time.Format("15:04:05"), color, tview.Escape(n.Message))
	}
	return b.String()
}
