// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package fetch retrieves dashboard data from the server.
//
// A Fetcher tries a primary transport and, on transport failure only,
// falls back once to a secondary transport. It never retries further.
package fetch

import (
	"context"
	"encoding/json"

	"github.com/kulturhaus/kulturhaus/src/dashboard"
	"github.com/kulturhaus/kulturhaus/src/i18n"
	"github.com/kulturhaus/kulturhaus/src/tools/exceptions"
	"github.com/kulturhaus/kulturhaus/src/tools/logging"
)

var log logging.Logger

// A Transport retrieves dashboard data through one channel
type Transport interface {
	// Name identifies the transport in logs
	Name() string
	// Snapshot returns the full dashboard snapshot
	Snapshot(ctx context.Context) (dashboard.Snapshot, error)
	// Section returns the raw data of one section
	Section(ctx context.Context, name dashboard.SectionName) (json.RawMessage, error)
}

// A Fetcher retrieves dashboard data with a single fallback
type Fetcher struct {
	Primary  Transport
	Fallback Transport
	// Lang is the language of the error messages
	Lang string
}

// New returns a Fetcher using primary, then fallback if primary is unreachable.
// fallback may be nil.
func New(primary, fallback Transport, lang string) *Fetcher {
	return &Fetcher{
		Primary:  primary,
		Fallback: fallback,
		Lang:     lang,
	}
}

// Fetch returns the full dashboard snapshot.
//
// If the primary transport fails at transport level, the fallback is
// tried exactly once. If both are unreachable, the returned error is an
// exceptions.UserError of kind TransportError and reason Unreachable.
// Errors reported by the server are returned as is, without fallback.
func (f *Fetcher) Fetch(ctx context.Context) (dashboard.Snapshot, error) {
	snap, err := f.Primary.Snapshot(ctx)
	if err == nil {
		return snap.Normalize(), nil
	}
	if !exceptions.IsTransport(err) {
		return dashboard.EmptySnapshot(), err
	}
	log.Warn("Dashboard load error, trying fallback", "transport", f.Primary.Name(), "error", err)
	if f.Fallback == nil {
		return dashboard.EmptySnapshot(), f.unreachable(err)
	}
	snap, fbErr := f.Fallback.Snapshot(ctx)
	if fbErr == nil {
		return snap.Normalize(), nil
	}
	log.Error("Dashboard fallback error", "transport", f.Fallback.Name(), "error", fbErr)
	if !exceptions.IsTransport(fbErr) {
		return dashboard.EmptySnapshot(), fbErr
	}
	return dashboard.EmptySnapshot(), f.unreachable(fbErr)
}

// FetchSection returns the raw data of one section with the same
// fallback policy as Fetch.
func (f *Fetcher) FetchSection(ctx context.Context, name dashboard.SectionName) (json.RawMessage, error) {
	data, err := f.Primary.Section(ctx, name)
	if err == nil {
		return data, nil
	}
	if !exceptions.IsTransport(err) {
		return nil, err
	}
	log.Warn("Section refresh error, trying fallback", "transport", f.Primary.Name(), "section", name, "error", err)
	if f.Fallback == nil {
		return nil, f.unreachable(err)
	}
	data, fbErr := f.Fallback.Section(ctx, name)
	if fbErr == nil {
		return data, nil
	}
	if !exceptions.IsTransport(fbErr) {
		return nil, fbErr
	}
	return nil, f.unreachable(fbErr)
}

func (f *Fetcher) unreachable(cause error) error {
	return exceptions.Wrap(cause, exceptions.TransportError, exceptions.Unreachable, i18n.T(f.Lang, "dashboard.failed"))
}

// rejected returns the error of a well-formed response that signals a failure
func rejected(lang, message string) error {
	if message == "" {
		message = i18n.T(lang, "dashboard.failed")
	}
	return exceptions.New(exceptions.ServerLogicError, exceptions.Rejected, message)
}

func init() {
	log = logging.GetLogger("fetch")
}
