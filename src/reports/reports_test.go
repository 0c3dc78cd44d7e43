// Copyright 2020 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package reports_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kulturhaus/kulturhaus/src/reports"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleData(ctx context.Context, ids []int64, data reports.Data) (reports.Data, error) {
	return reports.Data{
		"Name":  "Jane Smith",
		"Count": len(ids),
	}, nil
}

func TestReports(t *testing.T) {
	Convey("Testing TextReport", t, func() {
		report := reports.TextReport{
			Id:        "sample_report",
			Name:      "Sample Report",
			ModelName: "res.partner",
			MimeType:  reports.MimeText,
			Filename:  "sample.txt",
			Template: `
Member report
=============
Name: {{ .Name }}
Records: {{ .Count }}
`,
			DataFunc: sampleData,
		}
		report2 := report
		report2.Id = "sample_html"
		report2.Filename = "sample.html"
		report2.MimeType = reports.MimeHTML
		report2.Template = `<p>{{ .Name }} & {{ .Count }}</p>`
		report2.OpenInNewTab = true
		ctx := context.Background()
		Convey("Registering a text report", func() {
			So(func() { reports.Register(&report) }, ShouldNotPanic)
			So(func() { reports.Register(&report2) }, ShouldNotPanic)
		})
		Convey("Registering twice should panic", func() {
			So(func() { reports.Register(&report) }, ShouldPanic)
		})
		Convey("Replacing a text report", func() {
			rep := report
			rep.Name = "New Sample Report"
			So(func() { reports.Registry.Replace(&rep) }, ShouldNotPanic)
		})
		Convey("Replacing a report that doesn't exist should fail", func() {
			rep := report
			rep.Id = "sample_report_2"
			So(func() { reports.Registry.Replace(&rep) }, ShouldPanic)
		})
		Convey("Registering an incomplete report should fail", func() {
			rep := report
			rep.Id = "sample_report_3"
			rep.Filename = ""
			So(func() { reports.Register(&rep) }, ShouldPanic)
		})
		Convey("Fetching a report from registry", func() {
			rep, ok := reports.Registry.Get("sample_report")
			So(ok, ShouldBeTrue)
			So(rep, ShouldNotBeNil)
			So(func() { reports.Registry.MustGet("sample_report") }, ShouldNotPanic)
			So(func() { reports.Registry.MustGet("sample_report_2") }, ShouldPanic)
			So(rep.String(), ShouldEqual, "New Sample Report")
			So(reports.Registry.IDs(), ShouldResemble, []string{"sample_html", "sample_report"})
		})
		Convey("Rendering text report", func() {
			rep := reports.Registry.MustGet("sample_report")
			doc, err := rep.Render(ctx, []int64{1, 2}, nil)
			So(err, ShouldBeNil)
			So(doc.MimeType, ShouldEqual, "text/plain")
			So(doc.Filename, ShouldEqual, "sample.txt")
			So(string(doc.Content), ShouldEqual, `
Member report
=============
Name: Jane Smith
Records: 2
`)
			So(rep.Type(), ShouldEqual, reports.QWebText)
		})
		Convey("Rendering html report", func() {
			rep := reports.Registry.MustGet("sample_html")
			doc, err := rep.Render(ctx, []int64{1}, nil)
			So(err, ShouldBeNil)
			So(doc.MimeType, ShouldEqual, "text/html")
			So(string(doc.Content), ShouldEqual, `<p>Jane Smith & 1</p>`)
			So(rep.Type(), ShouldEqual, reports.QWebHTML)
		})
		Convey("Testing loading error cases", func() {
			rep := report
			rep.Filename = ""
			err := rep.Init()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "incomplete TextReport: Filename is not set")
			rep.Filename = report.Filename
			rep.DataFunc = nil
			err = rep.Init()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "incomplete TextReport: DataFunc is not set")
			rep.DataFunc = report.DataFunc
			rep.Template = `BEGIN {{ .Name } END`
			err = rep.Init()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "error while loading TextReport template: template: :1: unexpected \"}\" in operand")
			rep.Template = report.Template
			rep.MimeType = "application/json"
			err = rep.Init()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "unsupported mime type 'application/json' for TextReport")
		})
		Convey("Testing rendering error cases", func() {
			rep := report
			rep.DataFunc = func(context.Context, []int64, reports.Data) (reports.Data, error) {
				return nil, errors.New("database is down")
			}
			_, err := rep.Render(ctx, nil, nil)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "database is down")
			rep = report
			rep.Template = "{{ eq .Unknown \"something\" }}"
			_, err = rep.Render(ctx, nil, nil)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldBeIn, []string{`template: :1:3: executing "" at <eq .Unknown "something">: error calling eq: invalid type for comparison`, `template: :1:3: executing "" at <eq .Unknown "something">: error calling eq: incompatible types for comparison`})
		})
		Convey("Calling GetAction", func() {
			act := reports.GetAction("sample_html", []int64{3}, reports.Data{"foo": "bar"})
			So(act.Name, ShouldEqual, "Sample Report")
			So(act.Model, ShouldEqual, "res.partner")
			So(act.Data, ShouldResemble, reports.Data{"foo": "bar"})
			So(act.ReportName, ShouldEqual, "sample_html")
			So(act.ReportType, ShouldEqual, reports.QWebHTML)
			So(act.Context["active_ids"], ShouldResemble, []int64{3})
			So(act.OpenWithAnotherTab, ShouldBeTrue)
		})
	})
}

func TestReportURL(t *testing.T) {
	Convey("Testing report URLs", t, func() {
		action := &reports.Action{
			ReportName:         "kulturhaus.sepa_batch",
			ReportType:         reports.QWebPDF,
			Context:            reports.Data{"active_ids": []int64{4, 5}, "lang": "en_US"},
			OpenWithAnotherTab: true,
		}
		user := reports.Data{"lang": "de_DE"}
		Convey("Without data, the active ids are in the path", func() {
			u, err := reports.URL(action, user)
			So(err, ShouldBeNil)
			So(u, ShouldEqual, "/report/pdf/kulturhaus.sepa_batch/4,5?context=%7B%22active_ids%22%3A%5B4%2C5%5D%2C%22lang%22%3A%22de_DE%22%7D")
		})
		Convey("Active ids of any integer slice type are in the path", func() {
			action.Context["active_ids"] = []int{4, 5}
			u, err := reports.URL(action, nil)
			So(err, ShouldBeNil)
			So(u, ShouldStartWith, "/report/pdf/kulturhaus.sepa_batch/4,5?")
			action.Context["active_ids"] = []interface{}{float64(7), int32(8)}
			u, err = reports.URL(action, nil)
			So(err, ShouldBeNil)
			So(u, ShouldStartWith, "/report/pdf/kulturhaus.sepa_batch/7,8?")
			action.Context["active_ids"] = int64(9)
			u, err = reports.URL(action, nil)
			So(err, ShouldBeNil)
			So(u, ShouldStartWith, "/report/pdf/kulturhaus.sepa_batch/9?")
		})
		Convey("Invalid active ids are an error", func() {
			action.Context["active_ids"] = []string{"4", "5"}
			_, err := reports.URL(action, nil)
			So(err, ShouldNotBeNil)
			action.Context["active_ids"] = []interface{}{4.5}
			_, err = reports.URL(action, nil)
			So(err, ShouldNotBeNil)
			action.Context["active_ids"] = "4,5"
			_, err = reports.URL(action, nil)
			So(err, ShouldNotBeNil)
		})
		Convey("With data, options and context are in the query", func() {
			action.Data = reports.Data{"title": "Mai Bericht"}
			action.ReportType = reports.QWebHTML
			u, err := reports.URL(action, nil)
			So(err, ShouldBeNil)
			So(u, ShouldEqual, "/report/html/kulturhaus.sepa_batch?options=%7B%22title%22%3A%22Mai%20Bericht%22%7D"+
				"&context=%7B%22active_ids%22%3A%5B4%2C5%5D%2C%22lang%22%3A%22en_US%22%7D")
		})
		Convey("Only flagged PDF and HTML reports are opened in another tab", func() {
			var opened []string
			opener := reports.OpenerFunc(func(u string) error {
				opened = append(opened, u)
				return nil
			})
			ok, err := reports.Open(opener, action, user)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(opened, ShouldHaveLength, 1)
			action.OpenWithAnotherTab = false
			ok, _ = reports.Open(opener, action, user)
			So(ok, ShouldBeFalse)
			action.OpenWithAnotherTab = true
			action.ReportType = reports.QWebText
			ok, _ = reports.Open(opener, action, user)
			So(ok, ShouldBeFalse)
			So(opened, ShouldHaveLength, 1)
			ok, err = reports.Open(reports.OpenerFunc(func(string) error { return errors.New("no browser") }), &reports.Action{
				ReportName: "r", ReportType: reports.QWebPDF, OpenWithAnotherTab: true,
			}, nil)
			So(ok, ShouldBeFalse)
			So(err.Error(), ShouldEqual, "unable to open report r: no browser")
		})
		Convey("Record ids can be parsed", func() {
			ids, err := reports.ParseIDs("4, 5,6")
			So(err, ShouldBeNil)
			So(ids, ShouldResemble, []int64{4, 5, 6})
			_, err = reports.ParseIDs("4,x")
			So(err, ShouldNotBeNil)
			ids, err = reports.ParseIDs("")
			So(err, ShouldBeNil)
			So(ids, ShouldBeEmpty)
		})
	})
}
