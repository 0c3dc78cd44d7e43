// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package notify holds the notification sink used to display
// transient banners to the user.
package notify

import (
	"sync"
	"time"

	"github.com/kulturhaus/kulturhaus/src/tools/logging"
)

// A Severity is the display level of a notification
type Severity string

// Notification severities
const (
	Info    Severity = "info"
	Success Severity = "success"
	Warning Severity = "warning"
	Danger  Severity = "danger"
)

// A Notifier displays a message to the user. Implementations
// must not block: notifications are fire-and-forget.
type Notifier interface {
	Notify(message string, severity Severity)
}

// NotifierFunc adapts an ordinary function to the Notifier interface
type NotifierFunc func(message string, severity Severity)

// Notify calls f(message, severity)
func (f NotifierFunc) Notify(message string, severity Severity) {
	f(message, severity)
}

// Discard is a Notifier that drops all notifications
var Discard Notifier = NotifierFunc(func(string, Severity) {})

// A Notification is a message that has been sent to a Notifier
type Notification struct {
	Message  string
	Severity Severity
	Time     time.Time
}

// LogNotifier writes notifications to a Logger
type LogNotifier struct {
	Logger logging.Logger
}

// Notify logs the message at a level matching the severity
func (l LogNotifier) Notify(message string, severity Severity) {
	switch severity {
	case Danger:
		l.Logger.Error(message, "severity", severity)
	case Warning:
		l.Logger.Warn(message, "severity", severity)
	default:
		l.Logger.Info(message, "severity", severity)
	}
}

// A Buffer keeps the last notifications in memory
type Buffer struct {
	sync.Mutex
	size  int
	items []Notification
	now   func() time.Time
}

// NewBuffer returns a Buffer that keeps at most size notifications
func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = 10
	}
	return &Buffer{
		size: size,
		now:  time.Now,
	}
}

// Notify appends the message to the buffer, dropping the oldest if full
func (b *Buffer) Notify(message string, severity Severity) {
	b.Lock()
	defer b.Unlock()
	b.items = append(b.items, Notification{Message: message, Severity: severity, Time: b.now()})
	if len(b.items) > b.size {
		b.items = b.items[len(b.items)-b.size:]
	}
}

// Items returns a copy of the buffered notifications, oldest first
func (b *Buffer) Items() []Notification {
	b.Lock()
	defer b.Unlock()
	res := make([]Notification, len(b.items))
	copy(res, b.items)
	return res
}

// Multi returns a Notifier that forwards to all the given notifiers
func Multi(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(message string, severity Severity) {
		for _, n := range notifiers {
			n.Notify(message, severity)
		}
	})
}
