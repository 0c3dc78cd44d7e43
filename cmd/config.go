// Copyright 2018 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// secretKeys are masked by 'config show'
var secretKeys = []string{"db.password", "telegram.token", "server.sessionsecret"}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration file utilities",
	Long:  `Kulturhaus configuration file (kulturhaus.toml or kulturhaus.yaml) utilities`,
}

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Scaffold a Kulturhaus configuration file",
	Long: `Create a Kulturhaus configuration file kulturhaus.toml in the current directory. Use the -c flag to specify another destination file.
All configuration parameters passed as environment variables or as flags will be set in the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgFile := viper.GetString("ConfigFileName")
		if cfgFile == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			cfgFile = filepath.Join(cwd, "kulturhaus.toml")
		}
		return viper.WriteConfigAs(cfgFile)
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	Long:  `Print the configuration resulting from the config file, the environment and the flags as YAML. Secrets are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := viper.AllSettings()
		for _, key := range secretKeys {
			maskSetting(settings, key)
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(settings)
	},
}

// maskSetting replaces the non empty value of the dotted key in settings
func maskSetting(settings map[string]interface{}, key string) {
	parts := strings.SplitN(key, ".", 2)
	value, ok := settings[parts[0]]
	if !ok {
		return
	}
	if len(parts) == 2 {
		if sub, ok := value.(map[string]interface{}); ok {
			maskSetting(sub, parts[1])
		}
		return
	}
	if s, ok := value.(string); ok && s != "" {
		settings[parts[0]] = "********"
	}
}

func init() {
	KulturhausCmd.AddCommand(configCmd)
	configCmd.AddCommand(scaffoldCmd)
	configCmd.AddCommand(showCmd)
}
