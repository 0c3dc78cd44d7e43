// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package dashboard holds the data model of the admin dashboard.
//
// A Snapshot is the complete set of section data at one point in time.
// Missing sections and null values always decode to the documented
// empty shape returned by EmptySnapshot.
package dashboard

import (
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// A SectionName is the name of one dashboard section
type SectionName string

// Dashboard sections
const (
	Members SectionName = "members"
	Sepa    SectionName = "sepa"
	Events  SectionName = "events"
	Website SectionName = "website"
	Social  SectionName = "social"
)

// SectionNames lists all the sections in display order
var SectionNames = []SectionName{Members, Sepa, Events, Website, Social}

// ParseSectionName returns the SectionName for s.
// The second return value is false if s is not a section name.
func ParseSectionName(s string) (SectionName, bool) {
	for _, name := range SectionNames {
		if string(name) == s {
			return name, true
		}
	}
	return "", false
}

// A SepaStatus is the state of the next SEPA collection
type SepaStatus string

// SEPA statuses
const (
	SepaReady   SepaStatus = "ready"
	SepaPending SepaStatus = "pending"
	SepaIssues  SepaStatus = "issues"
)

// A ChurnEntry is the member movement of one quarter
type ChurnEntry struct {
	Quarter string `json:"quarter"`
	New     int    `json:"new"`
	Lost    int    `json:"lost"`
	Net     int    `json:"net"`
}

// MembersSection holds the membership figures
type MembersSection struct {
	Active         int          `json:"active"`
	Delta          int          `json:"delta"`
	QuarterlyChurn []ChurnEntry `json:"quarterly_churn"`
}

// SepaSection holds the next SEPA direct debit collection
type SepaSection struct {
	NextDate string     `json:"next_date"`
	Amount   float64    `json:"amount"`
	Status   SepaStatus `json:"status"`
}

// EventsSection holds the next event and the ticket revenue
type EventsSection struct {
	NextEvent      string  `json:"next_event"`
	EventDate      string  `json:"event_date"`
	TicketsSold    int     `json:"tickets_sold"`
	Capacity       int     `json:"capacity"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
}

// WebsiteSection holds the website audience
type WebsiteSection struct {
	QuarterlyVisitors int     `json:"quarterly_visitors"`
	ChangePercent     float64 `json:"change_percent"`
}

// SocialSection holds the social media audience
type SocialSection struct {
	InstagramFollowers int     `json:"instagram_followers"`
	EngagementRate     float64 `json:"engagement_rate"`
	LastPost           string  `json:"last_post"`
}

// A Snapshot aggregates all dashboard sections
type Snapshot struct {
	Members MembersSection `json:"members"`
	Sepa    SepaSection    `json:"sepa"`
	Events  EventsSection  `json:"events"`
	Website WebsiteSection `json:"website"`
	Social  SocialSection  `json:"social"`
}

// EmptySnapshot returns the snapshot displayed before any data is loaded
func EmptySnapshot() Snapshot {
	return Snapshot{
		Members: MembersSection{QuarterlyChurn: []ChurnEntry{}},
		Sepa:    SepaSection{Status: SepaPending},
	}
}

// Normalize replaces the null values of s by their empty shape
func (s Snapshot) Normalize() Snapshot {
	if s.Members.QuarterlyChurn == nil {
		s.Members.QuarterlyChurn = []ChurnEntry{}
	}
	if s.Sepa.Status == "" {
		s.Sepa.Status = SepaPending
	}
	return s
}

// Clone returns a deep copy of s
func (s Snapshot) Clone() Snapshot {
	res := s
	res.Members.QuarterlyChurn = make([]ChurnEntry, len(s.Members.QuarterlyChurn))
	copy(res.Members.QuarterlyChurn, s.Members.QuarterlyChurn)
	return res
}

// Section returns the data of the given section
func (s Snapshot) Section(name SectionName) interface{} {
	switch name {
	case Members:
		return s.Members
	case Sepa:
		return s.Sepa
	case Events:
		return s.Events
	case Website:
		return s.Website
	case Social:
		return s.Social
	}
	return nil
}

// WithSection returns a copy of s in which the given section has been
// replaced by the JSON data. s itself is never modified.
func (s Snapshot) WithSection(name SectionName, data json.RawMessage) (Snapshot, error) {
	res := s.Clone()
	var target interface{}
	switch name {
	case Members:
		res.Members = MembersSection{}
		target = &res.Members
	case Sepa:
		res.Sepa = SepaSection{}
		target = &res.Sepa
	case Events:
		res.Events = EventsSection{}
		target = &res.Events
	case Website:
		res.Website = WebsiteSection{}
		target = &res.Website
	case Social:
		res.Social = SocialSection{}
		target = &res.Social
	default:
		return s, errors.Errorf("unknown section %q", name)
	}
	if len(data) > 0 {
		if err := jsonAPI.Unmarshal(data, target); err != nil {
			return s, errors.Wrapf(err, "unable to decode section %s", name)
		}
	}
	return res.Normalize(), nil
}

// DecodeSnapshot decodes a JSON snapshot. Missing or null data
// gives the empty snapshot.
func DecodeSnapshot(data json.RawMessage) (Snapshot, error) {
	res := EmptySnapshot()
	if len(data) == 0 {
		return res, nil
	}
	if err := jsonAPI.Unmarshal(data, &res); err != nil {
		return EmptySnapshot(), errors.Wrap(err, "unable to decode dashboard snapshot")
	}
	return res.Normalize(), nil
}
