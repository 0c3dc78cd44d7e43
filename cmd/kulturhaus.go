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
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kulturhaus/kulturhaus/src/tools/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log logging.Logger

// KulturhausCmd is the base 'kulturhaus' command of the commander
var KulturhausCmd = &cobra.Command{
	Use:   "kulturhaus",
	Short: "Kulturhaus is the admin dashboard of the Kulturhaus ERP",
	Long: `Kulturhaus serves the admin dashboard of the Kulturhaus ERP and
shows it in the terminal. It also sends quick actions to Instagram and Telegram.`,
	SilenceUsage: true,
}

func init() {
	log = logging.GetLogger("init")
	cobra.OnInitialize(initConfig)

	KulturhausCmd.PersistentFlags().StringP("config", "c", "", "Alternate configuration file to read. Defaults to $HOME/.kulturhaus/")
	viper.BindPFlag("ConfigFileName", KulturhausCmd.PersistentFlags().Lookup("config"))

	KulturhausCmd.PersistentFlags().StringP("log-level", "L", "info", "Log level. Should be one of 'debug', 'info', 'warn', 'error' or 'crit'")
	viper.BindPFlag("LogLevel", KulturhausCmd.PersistentFlags().Lookup("log-level"))
	KulturhausCmd.PersistentFlags().String("log-file", "", "File to which the log will be written")
	viper.BindPFlag("LogFile", KulturhausCmd.PersistentFlags().Lookup("log-file"))
	KulturhausCmd.PersistentFlags().BoolP("log-stdout", "o", false, "Enable stdout logging. Use for development or debugging.")
	viper.BindPFlag("LogStdout", KulturhausCmd.PersistentFlags().Lookup("log-stdout"))
	KulturhausCmd.PersistentFlags().Bool("debug", false, "Enable server debug mode for development")
	viper.BindPFlag("Debug", KulturhausCmd.PersistentFlags().Lookup("debug"))

	KulturhausCmd.PersistentFlags().String("data-dir", "", "Path to the directory where Kulturhaus should store its data")
	viper.BindPFlag("DataDir", KulturhausCmd.PersistentFlags().Lookup("data-dir"))

	KulturhausCmd.PersistentFlags().StringP("url", "u", "http://localhost:8069", "Base URL of the dashboard server")
	viper.BindPFlag("Dashboard.URL", KulturhausCmd.PersistentFlags().Lookup("url"))
	KulturhausCmd.PersistentFlags().String("lang", "de", "Language of the dashboard content")
	viper.BindPFlag("Dashboard.Lang", KulturhausCmd.PersistentFlags().Lookup("lang"))

	viper.SetEnvPrefix("KULTURHAUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func initConfig() {
	cfgFile := viper.GetString("ConfigFileName")
	if runtime.GOOS != "windows" {
		viper.AddConfigPath("/etc/kulturhaus")
	}

	osUser, err := user.Current()
	if err != nil {
		log.Panic("Unable to retrieve current user", "error", err)
	}
	defaultDir := filepath.Join(osUser.HomeDir, ".kulturhaus")
	viper.SetDefault("DataDir", defaultDir)
	viper.AddConfigPath(defaultDir)
	viper.AddConfigPath(".")

	viper.SetConfigName("kulturhaus")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	err = viper.ReadInConfig()
	if err != nil {
		log.Warn("Error while loading configuration file", "error", err)
	}
	logging.Initialize()
}

// contentLang returns the configured language of the dashboard content
func contentLang() string {
	if lang := viper.GetString("Dashboard.Lang"); lang != "" {
		return lang
	}
	return "de"
}
