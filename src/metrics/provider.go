// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/kulturhaus/kulturhaus/src/dashboard"
	"github.com/kulturhaus/kulturhaus/src/i18n"
	"github.com/kulturhaus/kulturhaus/src/tools/logging"
	"github.com/kulturhaus/kulturhaus/src/tools/nbutils"
	"github.com/pkg/errors"
)

var log logging.Logger

// Business constants of the dashboard figures
const (
	CollectionDay      = 15
	FullYearAmount     = 50.0
	ReducedAmount      = 25.0
	MandateValidity    = 1095 * 24 * time.Hour
	DeltaPeriod        = 30 * 24 * time.Hour
	QuarterLength      = 90 * 24 * time.Hour
	ChurnQuarters      = 4
	isoDateLayout      = "2006-01-02"
	isoDateTimeLayout  = "2006-01-02T15:04:05"
	defaultContentLang = "de"
)

// A Provider computes dashboard snapshots
type Provider struct {
	Store Store
	Stats StatsSource
	// Lang of the content of the snapshot. Defaults to German.
	Lang string
	// Now defaults to time.Now
	Now func() time.Time
}

// NewProvider returns a Provider reading from store and stats
func NewProvider(store Store, stats StatsSource) *Provider {
	return &Provider{
		Store: store,
		Stats: stats,
		Lang:  defaultContentLang,
		Now:   time.Now,
	}
}

// Snapshot computes all the sections of the dashboard
func (p *Provider) Snapshot(ctx context.Context) (dashboard.Snapshot, error) {
	res := dashboard.EmptySnapshot()
	var err error
	if res.Members, err = p.Members(ctx); err != nil {
		return dashboard.EmptySnapshot(), err
	}
	if res.Sepa, err = p.Sepa(ctx); err != nil {
		return dashboard.EmptySnapshot(), err
	}
	if res.Events, err = p.Events(ctx); err != nil {
		return dashboard.EmptySnapshot(), err
	}
	if res.Website, err = p.Stats.Website(ctx); err != nil {
		return dashboard.EmptySnapshot(), errors.Wrap(err, "unable to read website stats")
	}
	if res.Social, err = p.Stats.Social(ctx); err != nil {
		return dashboard.EmptySnapshot(), errors.Wrap(err, "unable to read social stats")
	}
	return res.Normalize(), nil
}

// Section computes a single section of the dashboard
func (p *Provider) Section(ctx context.Context, name dashboard.SectionName) (interface{}, error) {
	switch name {
	case dashboard.Members:
		return p.Members(ctx)
	case dashboard.Sepa:
		return p.Sepa(ctx)
	case dashboard.Events:
		return p.Events(ctx)
	case dashboard.Website:
		return p.Stats.Website(ctx)
	case dashboard.Social:
		return p.Stats.Social(ctx)
	}
	return nil, errors.Errorf("unknown section %q", name)
}

// Members computes the membership figures
func (p *Provider) Members(ctx context.Context) (dashboard.MembersSection, error) {
	now := p.now()
	active, err := p.Store.ActiveMembers(ctx, time.Time{})
	if err != nil {
		return dashboard.MembersSection{}, err
	}
	before, err := p.Store.ActiveMembers(ctx, now.Add(-DeltaPeriod))
	if err != nil {
		return dashboard.MembersSection{}, err
	}
	churn := make([]dashboard.ChurnEntry, ChurnQuarters)
	for q := 0; q < ChurnQuarters; q++ {
		from := now.Add(-time.Duration(q+1) * QuarterLength)
		to := now.Add(-time.Duration(q) * QuarterLength)
		newMembers, err := p.Store.NewMembers(ctx, from, to)
		if err != nil {
			return dashboard.MembersSection{}, err
		}
		lost, err := p.Store.LostMembers(ctx, from, to)
		if err != nil {
			return dashboard.MembersSection{}, err
		}
		churn[q] = dashboard.ChurnEntry{
			Quarter: fmt.Sprintf("Q%d", ChurnQuarters-q),
			New:     newMembers,
			Lost:    lost,
			Net:     newMembers - lost,
		}
	}
	return dashboard.MembersSection{
		Active:         active,
		Delta:          active - before,
		QuarterlyChurn: churn,
	}, nil
}

// Sepa computes the next SEPA collection
func (p *Provider) Sepa(ctx context.Context) (dashboard.SepaSection, error) {
	now := p.now()
	counts, err := p.Store.Mandates(ctx)
	if err != nil {
		return dashboard.SepaSection{}, err
	}
	expired, err := p.Store.ExpiredMandates(ctx, now.Add(-MandateValidity))
	if err != nil {
		return dashboard.SepaSection{}, err
	}
	status := dashboard.SepaReady
	if expired > 0 {
		status = dashboard.SepaIssues
	}
	return dashboard.SepaSection{
		NextDate: NextCollectionDate(now).Format(isoDateLayout),
		Amount:   CollectionAmount(counts),
		Status:   status,
	}, nil
}

// Events computes the next event and the ticket revenue of the current month
func (p *Provider) Events(ctx context.Context) (dashboard.EventsSection, error) {
	now := p.now()
	var res dashboard.EventsSection
	next, err := p.Store.NextEvent(ctx, now)
	if err != nil {
		return res, err
	}
	if next == nil {
		res.NextEvent = i18n.T(p.lang(), "dashboard.no_events")
	} else {
		res.NextEvent = next.Name
		res.EventDate = next.DateBegin.Format(isoDateTimeLayout)
		res.TicketsSold = next.Registrations
		res.Capacity = next.Capacity()
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	events, err := p.Store.Events(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return res, err
	}
	revenues := make([]float64, len(events))
	for i, e := range events {
		revenues[i] = e.Revenue()
	}
	res.MonthlyRevenue = nbutils.Sum(nbutils.Cents, revenues...)
	return res, nil
}

// NextCollectionDate returns the date of the next SEPA collection: the 15th
// of this month up to the 15th included, else the 15th of next month.
func NextCollectionDate(now time.Time) time.Time {
	res := time.Date(now.Year(), now.Month(), CollectionDay, 0, 0, 0, 0, now.Location())
	if now.Day() > CollectionDay {
		res = res.AddDate(0, 1, 0)
	}
	return res
}

// CollectionAmount returns the amount of the next collection
func CollectionAmount(counts MandateCounts) float64 {
	reduced := counts.Total - counts.FullYear
	if reduced < 0 {
		reduced = 0
	}
	return nbutils.Sum(nbutils.Cents,
		nbutils.Mul(int64(counts.FullYear), FullYearAmount, nbutils.Cents),
		nbutils.Mul(int64(reduced), ReducedAmount, nbutils.Cents))
}

func (p *Provider) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p *Provider) lang() string {
	if p.Lang == "" {
		return defaultContentLang
	}
	return p.Lang
}

func init() {
	log = logging.GetLogger("metrics")
}
