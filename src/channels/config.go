// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package channels

import (
	"github.com/kulturhaus/kulturhaus/src/quickaction"
	"github.com/spf13/viper"
)

// DefaultRatePerMinute is the default quick action rate limit
const DefaultRatePerMinute = 6

// NewDispatcherFromConfig returns a Dispatcher set up from the
// Telegram.*, Instagram.* and QuickAction.* configuration keys.
// Telegram is only registered if a token is configured.
func NewDispatcherFromConfig(lang string) (*Dispatcher, error) {
	d := NewDispatcher(lang)
	d.Register(quickaction.InstagramPost, Instagram{Account: viper.GetString("Instagram.Account")})
	if token := viper.GetString("Telegram.Token"); token != "" {
		tg, err := NewTelegram(token, viper.GetString("Telegram.Channel"))
		if err != nil {
			return nil, err
		}
		d.Register(quickaction.TelegramMessage, tg)
	} else {
		log.Warn("No telegram token configured, telegram quick actions are disabled")
	}
	ratePerMinute := DefaultRatePerMinute
	if viper.IsSet("QuickAction.RatePerMinute") {
		ratePerMinute = viper.GetInt("QuickAction.RatePerMinute")
	}
	d.SetRate(ratePerMinute)
	return d, nil
}
