// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package metrics computes the dashboard figures from the database.
package metrics

import (
	"context"
	"database/sql"
	"time"

	"github.com/kulturhaus/kulturhaus/src/tools/nbutils"
)

// MembershipFullYear is the membership type that pays the full collection amount
const MembershipFullYear = "full_year"

// An Event is an event with its registration count and first ticket price
type Event struct {
	ID            int64           `db:"id"`
	Name          string          `db:"name"`
	DateBegin     time.Time       `db:"date_begin"`
	SeatsMax      int             `db:"seats_max"`
	Registrations int             `db:"registrations"`
	TicketPrice   sql.NullFloat64 `db:"ticket_price"`
}

// Revenue returns the ticket revenue of the event
func (e Event) Revenue() float64 {
	if !e.TicketPrice.Valid {
		return 0
	}
	return nbutils.Mul(int64(e.Registrations), e.TicketPrice.Float64, nbutils.Cents)
}

// Capacity returns the number of seats of the event, 100 if unlimited
func (e Event) Capacity() int {
	if e.SeatsMax <= 0 {
		return 100
	}
	return e.SeatsMax
}

// MandateCounts holds the number of active SEPA mandates by membership type
type MandateCounts struct {
	FullYear int `db:"full_year"`
	Total    int `db:"total"`
}

// A Store reads the raw figures the dashboard is computed from
type Store interface {
	// ActiveMembers counts individuals with an active mandate. If createdBefore
	// is not zero, only partners created at or before that time are counted.
	ActiveMembers(ctx context.Context, createdBefore time.Time) (int, error)
	// NewMembers counts individuals with a mandate created in [from, to)
	NewMembers(ctx context.Context, from, to time.Time) (int, error)
	// LostMembers counts individuals whose mandate was deactivated in [from, to)
	LostMembers(ctx context.Context, from, to time.Time) (int, error)
	// Mandates counts the active mandates by membership type
	Mandates(ctx context.Context) (MandateCounts, error)
	// ExpiredMandates counts active mandates signed before the given time
	ExpiredMandates(ctx context.Context, signedBefore time.Time) (int, error)
	// NextEvent returns the first event starting after the given time, or nil
	NextEvent(ctx context.Context, after time.Time) (*Event, error)
	// Events returns the events starting in [from, to)
	Events(ctx context.Context, from, to time.Time) ([]Event, error)
}
