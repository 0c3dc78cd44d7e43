// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kulturhaus/kulturhaus/cmd"
	_ "github.com/kulturhaus/kulturhaus/src/addons/kulturhaus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.KulturhausCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
