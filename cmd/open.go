// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package cmd

import (
	"os/exec"
	"runtime"

	"github.com/pkg/errors"
)

// openLink opens link in the default browser of the desktop
func openLink(link string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", link)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", link)
	default:
		cmd = exec.Command("xdg-open", link)
	}
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "unable to open %s", link)
	}
	log.Debug("Opened link", "link", link)
	return nil
}
