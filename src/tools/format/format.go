// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package format holds the display formatters of the dashboard.
//
// All functions are total: they never fail and map missing or
// unparsable input to a documented placeholder.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kulturhaus/kulturhaus/src/i18n"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is displayed for missing or unparsable dates
const Placeholder = "-"

// dateLayouts are the ISO layouts accepted for dates, most precise first
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var germanWeekdays = [...]string{"So.", "Mo.", "Di.", "Mi.", "Do.", "Fr.", "Sa."}

var printer = message.NewPrinter(language.German)

// euroLayout puts the German euro symbol after the amount, with the
// standard number of decimals of the currency.
var euroLayout = func() string {
	scale, _ := currency.Standard.Rounding(currency.EUR)
	symbol := printer.Sprint(currency.Symbol(currency.EUR))
	return fmt.Sprintf("%%.%df %s", scale, symbol)
}()

// Euro formats amount in the fixed de-DE locale with two decimals, e.g. "1.234,50 €".
func Euro(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	return printer.Sprintf(euroLayout, amount)
}

// Currency is Euro for an optional amount. A nil amount is formatted as zero.
func Currency(amount *float64) string {
	if amount == nil {
		return Euro(0)
	}
	return Euro(*amount)
}

// ParseDate parses an ISO date or date time string.
// The second return value is false if value is empty or unparsable.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date formats an ISO date as 02.01.2006
func Date(value string) string {
	t, ok := ParseDate(value)
	if !ok {
		return Placeholder
	}
	return t.Format("02.01.2006")
}

// DateTime formats an ISO date time with the German short weekday,
// e.g. "Mo., 02.01., 15:04".
func DateTime(value string) string {
	t, ok := ParseDate(value)
	if !ok {
		return Placeholder
	}
	return germanWeekdays[t.Weekday()] + ", " + t.Format("02.01., 15:04")
}

// TimeSince returns how long ago the ISO date last was, relative to now,
// bucketed in hours then days.
func TimeSince(last string, now time.Time, lang string) string {
	t, ok := ParseDate(last)
	if !ok {
		return i18n.T(lang, "time.never")
	}
	hours := int(math.Floor(now.Sub(t).Hours()))
	switch {
	case hours < 1:
		return i18n.T(lang, "time.just_now")
	case hours == 1:
		return i18n.T(lang, "time.hour_ago")
	case hours < 24:
		return i18n.T(lang, "time.hours_ago", hours)
	}
	days := hours / 24
	if days == 1 {
		return i18n.T(lang, "time.yesterday")
	}
	return i18n.T(lang, "time.days_ago", days)
}

// TimeUntil returns the number of days until the ISO date next,
// rounded up. Missing dates give the empty string.
func TimeUntil(next string, now time.Time, lang string) string {
	t, ok := ParseDate(next)
	if !ok {
		return ""
	}
	days := int(math.Ceil(t.Sub(now).Hours() / 24))
	switch {
	case days < 0:
		return i18n.T(lang, "time.past")
	case days == 0:
		return i18n.T(lang, "time.today")
	case days == 1:
		return i18n.T(lang, "time.tomorrow")
	}
	return i18n.T(lang, "time.in_days", days)
}

// Count formats an integer with thousands separators for lang
func Count(n int64, lang string) string {
	if strings.HasPrefix(strings.ToLower(lang), "de") {
		return printer.Sprintf("%d", n)
	}
	return humanize.Comma(n)
}

// Percent returns part out of total as a rounded percentage.
// It returns 0 if total is not positive.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// SignedPercent formats a change rate with an explicit sign and one decimal
func SignedPercent(change float64, lang string) string {
	if math.IsNaN(change) || math.IsInf(change, 0) {
		change = 0
	}
	p := printer
	if !strings.HasPrefix(strings.ToLower(lang), "de") {
		p = message.NewPrinter(language.English)
	}
	return p.Sprintf("%+.1f", change) + " %"
}

// SepaStatusClass returns the display class of a SEPA status
func SepaStatusClass(status string) string {
	switch status {
	case "ready":
		return "text-success"
	case "pending":
		return "text-warning"
	case "issues":
		return "text-danger"
	}
	return "text-muted"
}

// SepaStatusIcon returns the icon of a SEPA status
func SepaStatusIcon(status string) string {
	switch status {
	case "ready":
		return "fa-check-circle"
	case "pending":
		return "fa-clock"
	case "issues":
		return "fa-exclamation-triangle"
	}
	return "fa-question-circle"
}

// DeltaIcon returns the trend icon of a member delta
func DeltaIcon(delta int) string {
	switch {
	case delta > 0:
		return "fa-arrow-up text-success"
	case delta < 0:
		return "fa-arrow-down text-danger"
	}
	return "fa-minus text-muted"
}
