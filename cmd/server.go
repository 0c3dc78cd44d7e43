// Copyright 2017 NDP Systèmes. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/kulturhaus/kulturhaus/src/controllers"
	"github.com/kulturhaus/kulturhaus/src/i18n"
	"github.com/kulturhaus/kulturhaus/src/menus"
	"github.com/kulturhaus/kulturhaus/src/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Kulturhaus server",
	Long: `Start the Kulturhaus server that serves the dashboard data
and forwards the quick actions to the external channels.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return StartServer(cmd.Context())
	},
}

// StartServer starts the Kulturhaus server with all the registered
// modules and blocks until ctx is done or the server fails.
func StartServer(ctx context.Context) error {
	setupDebug()
	server.PreInit()
	i18n.BootStrap()
	menus.BootStrap()
	controllers.BootStrap()
	server.PostInit()
	srv := server.GetServer()
	address := fmt.Sprintf("%s:%s", viper.GetString("Server.Interface"), viper.GetString("Server.Port"))
	cert := viper.GetString("Server.Certificate")
	key := viper.GetString("Server.PrivateKey")
	domain := viper.GetString("Server.Domain")
	switch {
	case cert != "":
		return srv.RunTLS(address, cert, key)
	case domain != "":
		return srv.RunAutoTLS(domain)
	default:
		return srv.Serve(ctx, address)
	}
}

// setupDebug updates the server for debugging if Debug is enabled
func setupDebug() {
	if !viper.GetBool("Debug") {
		return
	}
	gin.SetMode(gin.DebugMode)
	server.GetServer().EnableProfiling()
}

func init() {
	serverCmd.PersistentFlags().StringP("interface", "i", "", "Interface on which the server should listen. Empty string is all interfaces")
	viper.BindPFlag("Server.Interface", serverCmd.PersistentFlags().Lookup("interface"))
	serverCmd.PersistentFlags().StringP("port", "p", "8069", "Port on which the server should listen.")
	viper.BindPFlag("Server.Port", serverCmd.PersistentFlags().Lookup("port"))
	serverCmd.PersistentFlags().StringSliceP("languages", "l", []string{"de", "en"}, "Comma separated list of language codes of the content (ex: de,en).")
	viper.BindPFlag("Server.Languages", serverCmd.PersistentFlags().Lookup("languages"))
	serverCmd.PersistentFlags().StringP("domain", "d", "", "Domain name of the server. When set, interface and port are set to 0.0.0.0:443 and it will automatically get an HTTPS certificate from Letsencrypt")
	viper.BindPFlag("Server.Domain", serverCmd.PersistentFlags().Lookup("domain"))
	serverCmd.PersistentFlags().StringP("certificate", "C", "", "Certificate file for HTTPS. If neither certificate nor domain is set, the server will run on plain HTTP. When certificate is set, private-key must also be set.")
	viper.BindPFlag("Server.Certificate", serverCmd.PersistentFlags().Lookup("certificate"))
	serverCmd.PersistentFlags().StringP("private-key", "K", "", "Private key file for HTTPS.")
	viper.BindPFlag("Server.PrivateKey", serverCmd.PersistentFlags().Lookup("private-key"))

	serverCmd.PersistentFlags().String("db-driver", "postgres", "Database driver to use")
	viper.BindPFlag("DB.Driver", serverCmd.PersistentFlags().Lookup("db-driver"))
	serverCmd.PersistentFlags().String("db-sslmode", "disable", "Database driver sslmode")
	viper.BindPFlag("DB.SSLMode", serverCmd.PersistentFlags().Lookup("db-sslmode"))
	serverCmd.PersistentFlags().String("db-host", "/var/run/postgresql",
		"The database host to connect to. Values that start with / are for unix domain sockets directory")
	viper.BindPFlag("DB.Host", serverCmd.PersistentFlags().Lookup("db-host"))
	serverCmd.PersistentFlags().String("db-port", "5432", "Database port. Value is ignored if db-host is not set")
	viper.BindPFlag("DB.Port", serverCmd.PersistentFlags().Lookup("db-port"))
	serverCmd.PersistentFlags().String("db-user", "", "Database user. Defaults to current user")
	viper.BindPFlag("DB.User", serverCmd.PersistentFlags().Lookup("db-user"))
	serverCmd.PersistentFlags().String("db-password", "", "Database password. Leave empty when connecting through socket")
	viper.BindPFlag("DB.Password", serverCmd.PersistentFlags().Lookup("db-password"))
	serverCmd.PersistentFlags().String("db-name", "kulturhaus", "Database name")
	viper.BindPFlag("DB.Name", serverCmd.PersistentFlags().Lookup("db-name"))

	serverCmd.PersistentFlags().String("telegram-channel", "", "Telegram channel username (ex: @kulturhaus) or chat id of the quick actions")
	viper.BindPFlag("Telegram.Channel", serverCmd.PersistentFlags().Lookup("telegram-channel"))
	serverCmd.PersistentFlags().Int("quick-action-rate", 6, "Maximum number of quick actions per minute. 0 disables the limit")
	viper.BindPFlag("QuickAction.RatePerMinute", serverCmd.PersistentFlags().Lookup("quick-action-rate"))
	KulturhausCmd.AddCommand(serverCmd)
}
