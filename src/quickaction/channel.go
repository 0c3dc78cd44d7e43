// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package quickaction

import (
	"strings"

	"github.com/kulturhaus/kulturhaus/src/i18n"
	"github.com/kulturhaus/kulturhaus/src/tools/exceptions"
)

// A Channel is an external channel a quick action can be sent to
type Channel int

// Quick action channels
const (
	InstagramPost Channel = iota + 1
	TelegramMessage
)

// Channels lists all the available channels
var Channels = []Channel{InstagramPost, TelegramMessage}

// Operation returns the server operation of this channel.
// It is used as the last element of the quick action URL.
func (c Channel) Operation() string {
	switch c {
	case InstagramPost:
		return "instagram"
	case TelegramMessage:
		return "telegram"
	}
	return ""
}

// Method returns the dashboard model method that sends to this channel
func (c Channel) Method() string {
	if op := c.Operation(); op != "" {
		return "quick_action_" + op
	}
	return ""
}

// DoneKey returns the i18n key of the success message of this channel
func (c Channel) DoneKey() string {
	return "quick_action." + c.Operation() + "_done"
}

// String returns the operation name of the channel
func (c Channel) String() string {
	if op := c.Operation(); op != "" {
		return op
	}
	return "unknown"
}

// Valid returns true if c is one of the known channels
func (c Channel) Valid() bool {
	return c.Operation() != ""
}

// ParseChannel returns the Channel whose operation is s.
// It returns a ValidationError with reason UnknownChannel otherwise.
func ParseChannel(s, lang string) (Channel, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Channels {
		if c.Operation() == key {
			return c, nil
		}
	}
	return 0, exceptions.New(exceptions.ValidationError, exceptions.UnknownChannel,
		i18n.T(lang, "quick_action.unknown_channel", s))
}
