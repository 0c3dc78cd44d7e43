// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package channels sends quick action messages to the external
// channels of the association.
package channels

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kulturhaus/kulturhaus/src/i18n"
	"github.com/kulturhaus/kulturhaus/src/quickaction"
	"github.com/kulturhaus/kulturhaus/src/tools/logging"
	"golang.org/x/time/rate"
)

var log logging.Logger

// A Poster publishes a message on one external channel
type Poster interface {
	Post(ctx context.Context, message string) error
}

// PosterFunc is a function that implements Poster
type PosterFunc func(ctx context.Context, message string) error

// Post calls f
func (f PosterFunc) Post(ctx context.Context, message string) error {
	return f(ctx, message)
}

// A Dispatcher routes quick actions to the Poster of their channel.
//
// It implements quickaction.Client so that it can be used in process
// as well as behind the quick action endpoint.
type Dispatcher struct {
	sync.RWMutex
	posters map[quickaction.Channel]Poster
	limiter *rate.Limiter
	lang    string
}

// NewDispatcher returns a Dispatcher without posters nor rate limit.
// Failure reasons are given in lang.
func NewDispatcher(lang string) *Dispatcher {
	return &Dispatcher{
		posters: make(map[quickaction.Channel]Poster),
		lang:    lang,
	}
}

// Register sets the Poster of the given channel, replacing any previous one
func (d *Dispatcher) Register(channel quickaction.Channel, poster Poster) {
	if !channel.Valid() {
		log.Panic("Unable to register poster for unknown channel", "channel", channel)
	}
	d.Lock()
	defer d.Unlock()
	d.posters[channel] = poster
}

// Registered returns true if a Poster is set for the given channel
func (d *Dispatcher) Registered(channel quickaction.Channel) bool {
	d.RLock()
	defer d.RUnlock()
	_, ok := d.posters[channel]
	return ok
}

// SetRate limits the number of posts per minute across all channels.
// A rate of 0 or less removes the limit.
func (d *Dispatcher) SetRate(perMinute int) {
	d.Lock()
	defer d.Unlock()
	if perMinute <= 0 {
		d.limiter = nil
		return
	}
	d.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

// Post sends message to the Poster of channel.
//
// Refusals and channel failures are reported in the Result with a
// message that can be shown to the user. An error is only returned if
// ctx is done before the message could be sent.
func (d *Dispatcher) Post(ctx context.Context, channel quickaction.Channel, message string) (quickaction.Result, error) {
	if err := ctx.Err(); err != nil {
		return quickaction.Result{}, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return d.failure("quick_action.empty_message"), nil
	}
	if !channel.Valid() {
		return d.failure("quick_action.unknown_channel", channel), nil
	}
	d.RLock()
	poster, ok := d.posters[channel]
	limiter := d.limiter
	d.RUnlock()
	if !ok {
		return d.failure("quick_action.not_configured", i18n.T(d.lang, "channel."+channel.Operation())), nil
	}
	if limiter != nil && !limiter.Allow() {
		log.Warn("Quick action throttled", "channel", channel)
		return d.failure("quick_action.throttled"), nil
	}
	if err := poster.Post(ctx, message); err != nil {
		if ctx.Err() != nil {
			return quickaction.Result{}, ctx.Err()
		}
		log.Warn("Unable to post quick action", "channel", channel, "error", err)
		return d.failure("quick_action.failed"), nil
	}
	log.Info("Quick action posted", "channel", channel)
	return quickaction.Result{Success: true}, nil
}

func (d *Dispatcher) failure(key string, args ...interface{}) quickaction.Result {
	return quickaction.Result{
		Success: false,
		Error:   i18n.T(d.lang, key, args...),
	}
}

func init() {
	log = logging.GetLogger("channels")
}
