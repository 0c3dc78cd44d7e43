// Copyright 2020 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package reports holds the printable reports of the application
// and builds the URLs to open them.
package reports

import "github.com/kulturhaus/kulturhaus/src/tools/logging"

var log logging.Logger

func init() {
	log = logging.GetLogger("reports")
	Registry = NewCollection()
}
