// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package cmd

import (
	"context"

	"github.com/kulturhaus/kulturhaus/src/actions"
	"github.com/kulturhaus/kulturhaus/src/dashboard/board"
	"github.com/kulturhaus/kulturhaus/src/dashboard/fetch"
	"github.com/kulturhaus/kulturhaus/src/menus"
	"github.com/kulturhaus/kulturhaus/src/notify"
	"github.com/kulturhaus/kulturhaus/src/quickaction"
	"github.com/kulturhaus/kulturhaus/src/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the dashboard in the terminal",
	Long: `Show the dashboard of the server given by --url in the terminal.
The data is refreshed periodically. Press r to refresh, 1-5 to refresh a
single section, m, s or e to open members, SEPA batches or events,
i or t to send a quick action and q to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watch(cmd.Context())
	},
}

// watch runs the terminal dashboard until the user quits or ctx is done
func watch(ctx context.Context) error {
	lang := contentLang()
	baseURL := viper.GetString("Dashboard.URL")
	menus.BootStrap()
	nav := actions.LinkNavigator{BaseURL: baseURL}
	if viper.GetBool("Dashboard.OpenLinks") {
		nav.Open = openLink
	}
	d := ui.New(ui.Config{
		Lang:      lang,
		Navigator: nav,
	})
	fetcher := fetch.New(fetch.NewHTTPTransport(baseURL, lang), fetch.NewRPCTransport(baseURL, lang), lang)
	b := board.New(fetcher, board.Config{
		Interval: viper.GetDuration("Dashboard.RefreshInterval"),
		Timeout:  viper.GetDuration("Dashboard.Timeout"),
		Notifier: notify.Multi(d, notify.LogNotifier{Logger: log}),
		Lang:     lang,
		OnChange: d.Update,
	})
	d.SetBoard(b)
	d.SetSubmitter(quickaction.NewSubmitter(quickaction.NewHTTPClient(baseURL), d, lang))
	return d.Run(ctx)
}

func init() {
	watchCmd.Flags().Duration("interval", board.DefaultInterval, "Time between two refreshes")
	viper.BindPFlag("Dashboard.RefreshInterval", watchCmd.Flags().Lookup("interval"))
	watchCmd.Flags().Duration("timeout", 0, "Timeout of the periodic refreshes. 0 means no timeout")
	viper.BindPFlag("Dashboard.Timeout", watchCmd.Flags().Lookup("timeout"))
	watchCmd.Flags().Bool("open-links", false, "Open members, SEPA batches and events in the browser")
	viper.BindPFlag("Dashboard.OpenLinks", watchCmd.Flags().Lookup("open-links"))
	KulturhausCmd.AddCommand(watchCmd)
}
