// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package controllers holds the inheritable registry of the http
// routes of the application.
package controllers

import (
	"github.com/kulturhaus/kulturhaus/src/server"
	"github.com/kulturhaus/kulturhaus/src/tools/logging"
)

var log logging.Logger

// BootStrap creates the actual controllers from the controllers registry.
// This function must be called before starting the http server.
func BootStrap() {
	Registry.Mount(server.GetServer().Group("/"))
}

func init() {
	log = logging.GetLogger("controllers")
	Registry = NewGroup("/")
}
