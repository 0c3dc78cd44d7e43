// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/kulturhaus/kulturhaus/src/i18n"
	"github.com/kulturhaus/kulturhaus/src/notify"
	"github.com/kulturhaus/kulturhaus/src/quickaction"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var postCmd = &cobra.Command{
	Use:   "post instagram|telegram message...",
	Short: "Send a quick action",
	Long: `Send a message to Instagram or Telegram through the server
given by --url. The remaining arguments are joined with spaces.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang := contentLang()
		channel, err := quickaction.ParseChannel(args[0], lang)
		if err != nil {
			return err
		}
		submitter := quickaction.NewSubmitter(quickaction.NewHTTPClient(viper.GetString("Dashboard.URL")),
			notify.LogNotifier{Logger: log}, lang)
		if err := submitter.Submit(cmd.Context(), channel, strings.Join(args[1:], " ")); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), i18n.T(lang, channel.DoneKey()))
		return nil
	},
}

func init() {
	KulturhausCmd.AddCommand(postCmd)
}
