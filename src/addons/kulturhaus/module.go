// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package kulturhaus is the dashboard module of the Kulturhaus server.
//
// It serves the dashboard data computed from the ERP database and
// forwards quick actions to the external channels.
package kulturhaus

import (
	"github.com/kulturhaus/kulturhaus/src/channels"
	"github.com/kulturhaus/kulturhaus/src/controllers"
	"github.com/kulturhaus/kulturhaus/src/metrics"
	"github.com/kulturhaus/kulturhaus/src/reports"
	"github.com/kulturhaus/kulturhaus/src/server"
	"github.com/kulturhaus/kulturhaus/src/tools/logging"
	"github.com/spf13/viper"
)

// Module data declaration
const (
	MODULE_NAME string = "kulturhaus_dashboard"
	// DefaultLang is the language of the dashboard content
	DefaultLang = "de"
)

var log logging.Logger

// handlers serve the routes of this module. Their services are set in
// preInit once the configuration is known.
var handlers = new(Handlers)

// ContentLang returns the configured language of the dashboard content
func ContentLang() string {
	if lang := viper.GetString("Dashboard.Lang"); lang != "" {
		return lang
	}
	return DefaultLang
}

// preInit connects the database and the external channels
func preInit() {
	db, err := metrics.Connect(metrics.DBParams{
		Driver:   viper.GetString("DB.Driver"),
		Name:     viper.GetString("DB.Name"),
		User:     viper.GetString("DB.User"),
		Password: viper.GetString("DB.Password"),
		Host:     viper.GetString("DB.Host"),
		Port:     viper.GetString("DB.Port"),
		SSLMode:  viper.GetString("DB.SSLMode"),
	})
	if err != nil {
		log.Panic("Unable to connect to the database", "error", err)
	}
	provider := metrics.NewProvider(metrics.NewSQLStore(db), metrics.StaticStatsFromConfig())
	provider.Lang = ContentLang()
	dispatcher, err := channels.NewDispatcherFromConfig(ContentLang())
	if err != nil {
		log.Panic("Unable to set up quick action channels", "error", err)
	}
	handlers.Provider = provider
	handlers.QuickActions = dispatcher
	handlers.Lang = ContentLang()
}

func postInit() {
	for _, route := range controllers.Registry.Routes() {
		log.Debug("Route declared", "method", route.Method, "path", route.Path)
	}
}

func init() {
	log = logging.GetLogger(MODULE_NAME)
	server.RegisterModule(&server.Module{
		Name:     MODULE_NAME,
		PreInit:  preInit,
		PostInit: postInit,
	})
	declareControllers(controllers.Registry, handlers)
	reports.Register(summaryReport(handlers))
}
