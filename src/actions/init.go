// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package actions holds the navigation descriptors of the dashboard
// and the sinks they are forwarded to.
package actions

import (
	"github.com/kulturhaus/kulturhaus/src/tools/logging"
)

var log logging.Logger

func init() {
	log = logging.GetLogger("actions")
	Registry = NewCollection()
	registerDashboardActions(Registry)
}
