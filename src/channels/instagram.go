// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package channels

import (
	"context"
)

// Instagram records posts for the Instagram account of the association.
// There is no publishing API behind it yet: posts are logged and
// reported as successful.
type Instagram struct {
	Account string
}

// Post logs the message
func (i Instagram) Post(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Info("Instagram post", "account", i.Account, "message", message)
	return nil
}
