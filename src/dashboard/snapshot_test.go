// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package dashboard

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const fullSnapshot = `{
	"members": {"active": 120, "delta": 4, "quarterly_churn": [{"quarter": "Q4", "new": 6, "lost": 2, "net": 4}]},
	"sepa": {"next_date": "2025-04-15", "amount": 4750.0, "status": "ready"},
	"events": {"next_event": "Jazzabend", "event_date": "2025-04-02T19:30:00", "tickets_sold": 45, "capacity": 120, "monthly_revenue": 540.0},
	"website": {"quarterly_visitors": 3120, "change_percent": 12.5},
	"social": {"instagram_followers": 905, "engagement_rate": 4.2, "last_post": "2025-03-30T10:00:00"}
}`

func TestSectionNames(t *testing.T) {
	Convey("Testing section names", t, func() {
		name, ok := ParseSectionName("sepa")
		So(ok, ShouldBeTrue)
		So(name, ShouldEqual, Sepa)
		_, ok = ParseSectionName("unknown")
		So(ok, ShouldBeFalse)
		_, ok = ParseSectionName("Members")
		So(ok, ShouldBeFalse)
		So(SectionNames, ShouldHaveLength, 5)
	})
}

func TestDecodeSnapshot(t *testing.T) {
	Convey("Testing snapshot decoding", t, func() {
		Convey("A full snapshot is decoded", func() {
			snap, err := DecodeSnapshot(json.RawMessage(fullSnapshot))
			So(err, ShouldBeNil)
			So(snap.Members.Active, ShouldEqual, 120)
			So(snap.Members.QuarterlyChurn, ShouldResemble, []ChurnEntry{{Quarter: "Q4", New: 6, Lost: 2, Net: 4}})
			So(snap.Sepa.Status, ShouldEqual, SepaReady)
			So(snap.Events.NextEvent, ShouldEqual, "Jazzabend")
			So(snap.Social.LastPost, ShouldEqual, "2025-03-30T10:00:00")
		})
		Convey("Missing sections and nulls get the empty shape", func() {
			snap, err := DecodeSnapshot(json.RawMessage(`{"members": {"active": 3, "quarterly_churn": null}, "sepa": {"next_date": null, "status": null}}`))
			So(err, ShouldBeNil)
			So(snap.Members.Active, ShouldEqual, 3)
			So(snap.Members.QuarterlyChurn, ShouldNotBeNil)
			So(snap.Members.QuarterlyChurn, ShouldBeEmpty)
			So(snap.Sepa.NextDate, ShouldEqual, "")
			So(snap.Sepa.Status, ShouldEqual, SepaPending)
			So(snap.Events, ShouldResemble, EventsSection{})
		})
		Convey("Null or empty data gives the empty snapshot", func() {
			snap, err := DecodeSnapshot(nil)
			So(err, ShouldBeNil)
			So(snap, ShouldResemble, EmptySnapshot())
			snap, err = DecodeSnapshot(json.RawMessage("null"))
			So(err, ShouldBeNil)
			So(snap, ShouldResemble, EmptySnapshot())
		})
		Convey("Invalid JSON is an error", func() {
			_, err := DecodeSnapshot(json.RawMessage(`{"members": [}`))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestWithSection(t *testing.T) {
	Convey("Testing section replacement", t, func() {
		snap, err := DecodeSnapshot(json.RawMessage(fullSnapshot))
		So(err, ShouldBeNil)
		before, _ := json.Marshal(snap)

		Convey("Only the given section is replaced", func() {
			res, err := snap.WithSection(Sepa, json.RawMessage(`{"next_date": "2025-05-15", "amount": 100, "status": "issues"}`))
			So(err, ShouldBeNil)
			So(res.Sepa, ShouldResemble, SepaSection{NextDate: "2025-05-15", Amount: 100, Status: SepaIssues})
			So(res.Members, ShouldResemble, snap.Members)
			after, _ := json.Marshal(snap)
			So(string(after), ShouldEqual, string(before))
		})
		Convey("Fields missing from the section are reset", func() {
			res, err := snap.WithSection(Members, json.RawMessage(`{"active": 121}`))
			So(err, ShouldBeNil)
			So(res.Members.Active, ShouldEqual, 121)
			So(res.Members.Delta, ShouldEqual, 0)
			So(res.Members.QuarterlyChurn, ShouldBeEmpty)
		})
		Convey("Invalid data leaves the snapshot unchanged", func() {
			res, err := snap.WithSection(Events, json.RawMessage(`{"tickets_sold": "many"}`))
			So(err, ShouldNotBeNil)
			after, _ := json.Marshal(res)
			So(string(after), ShouldEqual, string(before))
		})
		Convey("Unknown sections are refused", func() {
			_, err := snap.WithSection(SectionName("unknown"), json.RawMessage(`{}`))
			So(err, ShouldNotBeNil)
		})
		Convey("Clones do not share the churn slice", func() {
			clone := snap.Clone()
			clone.Members.QuarterlyChurn[0].New = 99
			So(snap.Members.QuarterlyChurn[0].New, ShouldEqual, 6)
		})
		Convey("Section returns the typed section data", func() {
			So(snap.Section(Website), ShouldResemble, snap.Website)
			So(snap.Section(SectionName("nope")), ShouldBeNil)
		})
	})
}
