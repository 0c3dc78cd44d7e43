// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package quickaction sends short messages to external channels
// through the server.
//
// A Submitter validates the message locally, then posts it. At most one
// submission is in flight at a time.
package quickaction

import (
	"context"
	"strings"
	"sync"

	"github.com/kulturhaus/kulturhaus/src/i18n"
	"github.com/kulturhaus/kulturhaus/src/notify"
	"github.com/kulturhaus/kulturhaus/src/tools/exceptions"
	"github.com/kulturhaus/kulturhaus/src/tools/logging"
)

var log logging.Logger

// A pending submission
type pending struct {
	channel Channel
	message string
	cancel  context.CancelFunc
}

// A Submitter sends quick actions one at a time
type Submitter struct {
	sync.Mutex
	client   Client
	notifier notify.Notifier
	lang     string
	pending  *pending
}

// NewSubmitter returns a Submitter that posts through client and reports
// to notifier. notifier may be nil.
func NewSubmitter(client Client, notifier notify.Notifier, lang string) *Submitter {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Submitter{
		client:   client,
		notifier: notifier,
		lang:     lang,
	}
}

// Submit sends message to channel and blocks until the server replies.
//
// A blank message is refused with an EmptyMessage ValidationError before
// any network call. A call while another submission is pending is refused
// with an AlreadyInFlight StateError. A failure reported by the server is
// returned with the server's reason as message, whereas transport failures
// give a generic SubmissionFailed error.
func (s *Submitter) Submit(ctx context.Context, channel Channel, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return s.refuse(exceptions.New(exceptions.ValidationError, exceptions.EmptyMessage, s.t("quick_action.empty_message")))
	}
	if !channel.Valid() {
		return s.refuse(exceptions.New(exceptions.ValidationError, exceptions.UnknownChannel, s.t("quick_action.unknown_channel", channel)))
	}

	s.Lock()
	if s.pending != nil {
		s.Unlock()
		return s.refuse(exceptions.New(exceptions.StateError, exceptions.AlreadyInFlight, s.t("quick_action.in_flight")))
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &pending{channel: channel, message: message, cancel: cancel}
	s.pending = p
	s.Unlock()
	defer cancel()

	res, err := s.client.Post(ctx, channel, message)

	s.Lock()
	cancelled := s.pending != p
	if !cancelled {
		s.pending = nil
	}
	s.Unlock()

	switch {
	case cancelled:
		log.Debug("Quick action cancelled", "channel", channel)
		return exceptions.Wrap(context.Canceled, exceptions.TransportError, exceptions.SubmissionFailed, s.t("quick_action.failed"))
	case err != nil:
		uerr := exceptions.Wrap(err, exceptions.TransportError, exceptions.SubmissionFailed, s.t("quick_action.failed"))
		log.Warn("Quick action error", "channel", channel, "error", err)
		s.notifier.Notify(uerr.Message, uerr.Severity)
		return uerr
	case !res.Success:
		msg := res.Error
		if msg == "" {
			msg = s.t("quick_action.failed")
		}
		uerr := exceptions.New(exceptions.ServerLogicError, exceptions.Rejected, msg)
		s.notifier.Notify(uerr.Message, uerr.Severity)
		return uerr
	}
	log.Info("Quick action sent", "channel", channel)
	s.notifier.Notify(s.t(channel.DoneKey()), notify.Success)
	return nil
}

// Cancel drops the pending submission, if any. The request is aborted
// and its result ignored. It returns false if nothing was pending.
func (s *Submitter) Cancel() bool {
	s.Lock()
	defer s.Unlock()
	if s.pending == nil {
		return false
	}
	s.pending.cancel()
	s.pending = nil
	return true
}

// Pending returns the channel of the submission in flight, if any
func (s *Submitter) Pending() (Channel, bool) {
	s.Lock()
	defer s.Unlock()
	if s.pending == nil {
		return 0, false
	}
	return s.pending.channel, true
}

func (s *Submitter) refuse(err exceptions.UserError) error {
	s.notifier.Notify(err.Message, err.Severity)
	return err
}

func (s *Submitter) t(key string, args ...interface{}) string {
	return i18n.T(s.lang, key, args...)
}

func init() {
	log = logging.GetLogger("quickaction")
}
