// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package channels

import (
	"context"
	"strconv"

	tgapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// A Sender sends messages to the Telegram Bot API.
// It is implemented by *tgapi.BotAPI.
type Sender interface {
	Send(c tgapi.Chattable) (tgapi.Message, error)
}

// Telegram posts messages to a Telegram channel through a bot
type Telegram struct {
	sender  Sender
	channel string
}

// NewTelegram connects the bot with the given token and returns a
// Telegram poster for channel. channel is either the @username of a
// public channel or a numeric chat ID.
func NewTelegram(token, channel string) (*Telegram, error) {
	api, err := tgapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect telegram bot")
	}
	log.Info("Telegram bot connected", "bot", api.Self.UserName, "channel", channel)
	return NewTelegramWithSender(api, channel), nil
}

// NewTelegramWithSender returns a Telegram poster using the given sender
func NewTelegramWithSender(sender Sender, channel string) *Telegram {
	return &Telegram{
		sender:  sender,
		channel: channel,
	}
}

// Post sends message to the channel. The message is sent as is, HTML
// special characters are escaped.
func (t *Telegram) Post(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var msg tgapi.MessageConfig
	text := tgapi.EscapeText(tgapi.ModeHTML, message)
	if chatID, err := strconv.ParseInt(t.channel, 10, 64); err == nil {
		msg = tgapi.NewMessage(chatID, text)
	} else {
		msg = tgapi.NewMessageToChannel(t.channel, text)
	}
	msg.ParseMode = tgapi.ModeHTML
	sent, err := t.sender.Send(msg)
	if err != nil {
		return errors.Wrapf(err, "unable to send message to %s", t.channel)
	}
	log.Debug("Telegram message sent", "channel", t.channel, "messageID", sent.MessageID)
	return nil
}
