// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	// PostgreSQL driver
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// DBParams are the connection parameters of the database
type DBParams struct {
	Driver   string
	Name     string
	User     string
	Password string
	Host     string
	Port     string
	SSLMode  string
}

// ConnectString returns the lib/pq connection string of these parameters
func (p DBParams) ConnectString() string {
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connectString := fmt.Sprintf("dbname=%s sslmode=%s", p.Name, sslMode)
	if p.User != "" {
		connectString += fmt.Sprintf(" user=%s", p.User)
	}
	if p.Password != "" {
		connectString += fmt.Sprintf(" password=%s", p.Password)
	}
	if p.Host != "" {
		connectString += fmt.Sprintf(" host=%s", p.Host)
	}
	if p.Port != "" && p.Port != "5432" {
		connectString += fmt.Sprintf(" port=%s", p.Port)
	}
	return connectString
}

// Connect opens and checks a connection to the database
func Connect(params DBParams) (*sqlx.DB, error) {
	driver := params.Driver
	if driver == "" {
		driver = "postgres"
	}
	db, err := sqlx.Connect(driver, params.ConnectString())
	if err != nil {
		return nil, errors.Wrapf(err, "unable to connect to database %s", params.Name)
	}
	log.Info("Connected to database", "driver", driver, "name", params.Name, "host", params.Host)
	return db, nil
}

// individual partners with an active mandate
const activeMembersCond = `is_company = false AND sepa_mandate_active = true`

const eventColumns = `
	e.id, e.name, e.date_begin, COALESCE(e.seats_max, 0) AS seats_max,
	(SELECT COUNT(*) FROM event_registration r WHERE r.event_id = e.id) AS registrations,
	(SELECT t.price FROM event_event_ticket t WHERE t.event_id = e.id ORDER BY t.id LIMIT 1) AS ticket_price`

// SQLStore is a Store that reads the tables of the ERP database
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore returns a Store reading from db
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// ActiveMembers counts individuals with an active mandate
func (s *SQLStore) ActiveMembers(ctx context.Context, createdBefore time.Time) (int, error) {
	if createdBefore.IsZero() {
		return s.count(ctx, `SELECT COUNT(*) FROM res_partner WHERE `+activeMembersCond)
	}
	return s.count(ctx, `SELECT COUNT(*) FROM res_partner WHERE `+activeMembersCond+` AND create_date <= $1`, createdBefore)
}

// NewMembers counts individuals with a mandate created in [from, to)
func (s *SQLStore) NewMembers(ctx context.Context, from, to time.Time) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM res_partner
		WHERE is_company = false AND sepa_mandate_id IS NOT NULL AND create_date >= $1 AND create_date < $2`, from, to)
}

// LostMembers counts individuals whose mandate was deactivated in [from, to)
func (s *SQLStore) LostMembers(ctx context.Context, from, to time.Time) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM res_partner
		WHERE is_company = false AND sepa_mandate_active = false AND write_date >= $1 AND write_date < $2`, from, to)
}

// Mandates counts the active mandates by membership type
func (s *SQLStore) Mandates(ctx context.Context) (MandateCounts, error) {
	var res MandateCounts
	err := s.db.GetContext(ctx, &res, `SELECT
		COUNT(*) FILTER (WHERE membership_type = $1) AS full_year, COUNT(*) AS total
		FROM res_partner WHERE `+activeMembersCond, MembershipFullYear)
	if err != nil {
		return MandateCounts{}, errors.Wrap(err, "unable to count mandates")
	}
	return res, nil
}

// ExpiredMandates counts active mandates signed before the given time
func (s *SQLStore) ExpiredMandates(ctx context.Context, signedBefore time.Time) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM res_partner WHERE `+activeMembersCond+` AND sepa_mandate_date < $1`, signedBefore)
}

// NextEvent returns the first event starting after the given time, or nil
func (s *SQLStore) NextEvent(ctx context.Context, after time.Time) (*Event, error) {
	var res Event
	err := s.db.GetContext(ctx, &res, `SELECT `+eventColumns+`
		FROM event_event e WHERE e.date_begin > $1 ORDER BY e.date_begin ASC LIMIT 1`, after)
	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, errors.Wrap(err, "unable to read next event")
	}
	return &res, nil
}

// Events returns the events starting in [from, to)
func (s *SQLStore) Events(ctx context.Context, from, to time.Time) ([]Event, error) {
	var res []Event
	err := s.db.SelectContext(ctx, &res, `SELECT `+eventColumns+`
		FROM event_event e WHERE e.date_begin >= $1 AND e.date_begin < $2 ORDER BY e.date_begin ASC`, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read events")
	}
	return res, nil
}

func (s *SQLStore) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var res int
	if err := s.db.GetContext(ctx, &res, query, args...); err != nil {
		return 0, errors.Wrap(err, "unable to count records")
	}
	return res, nil
}
