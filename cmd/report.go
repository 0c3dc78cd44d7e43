// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/kulturhaus/kulturhaus/src/reports"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var reportCmd = &cobra.Command{
	Use:   "report name [ids]",
	Short: "Print or open the URL of a report",
	Long: `Print the URL of the report 'name' for the given comma separated
record ids. With --open, reports flagged to open in another tab are
opened in the browser.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := reports.Registry.Get(args[0]); !ok {
			return errors.Errorf("unknown report %s. Known reports: %s", args[0], strings.Join(reports.Registry.IDs(), ", "))
		}
		var ids []int64
		if len(args) > 1 {
			var err error
			if ids, err = reports.ParseIDs(args[1]); err != nil {
				return err
			}
		}
		action := reports.GetAction(args[0], ids, nil)
		userContext := reports.Data{"lang": contentLang()}
		baseURL := strings.TrimRight(viper.GetString("Dashboard.URL"), "/")
		open, _ := cmd.Flags().GetBool("open")
		if open {
			opener := reports.OpenerFunc(func(u string) error {
				return openLink(baseURL + u)
			})
			opened, err := reports.Open(opener, action, userContext)
			if err != nil || opened {
				return err
			}
		}
		u, err := reports.URL(action, userContext)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), baseURL+u)
		return nil
	},
}

func init() {
	reportCmd.Flags().Bool("open", false, "Open the report in the browser")
	KulturhausCmd.AddCommand(reportCmd)
}
