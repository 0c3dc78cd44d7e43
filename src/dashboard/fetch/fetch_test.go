// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/kulturhaus/kulturhaus/src/dashboard"
	"github.com/kulturhaus/kulturhaus/src/rpc"
	"github.com/kulturhaus/kulturhaus/src/tools/exceptions"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleData = `{"members": {"active": 42, "delta": 2, "quarterly_churn": []}, "sepa": {"next_date": "2025-04-15", "amount": 2100, "status": "ready"}}`

// dashboardServer serves the dashboard endpoints with the given handler
// and counts the calls.
func dashboardServer(calls *int32, h http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		h(w, r)
	}))
}

func okEnvelope(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/dashboard/data":
		io.WriteString(w, `{"success": true, "data": `+sampleData+`}`)
	case "/dashboard/refresh/sepa":
		io.WriteString(w, `{"success": true, "data": {"next_date": "2025-05-15", "amount": 50, "status": "issues"}}`)
	default:
		http.NotFound(w, r)
	}
}

func unreachableServer() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestHTTPTransport(t *testing.T) {
	Convey("Testing the HTTP transport", t, func() {
		var calls int32
		ctx := context.Background()
		Convey("A successful envelope returns its data", func() {
			srv := dashboardServer(&calls, okEnvelope)
			defer srv.Close()
			tr := NewHTTPTransport(srv.URL+"/", "en")
			snap, err := tr.Snapshot(ctx)
			So(err, ShouldBeNil)
			So(snap.Members.Active, ShouldEqual, 42)
			So(snap.Sepa.Status, ShouldEqual, dashboard.SepaReady)
			data, err := tr.Section(ctx, dashboard.Sepa)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "issues")
		})
		Convey("A failed envelope is a server logic error", func() {
			srv := dashboardServer(&calls, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"success": false, "error": "access denied"}`)
			})
			defer srv.Close()
			_, err := NewHTTPTransport(srv.URL, "en").Snapshot(ctx)
			So(err, ShouldNotBeNil)
			So(exceptions.IsTransport(err), ShouldBeFalse)
			So(exceptions.KindOf(err), ShouldEqual, exceptions.ServerLogicError)
			So(err.Error(), ShouldEqual, "access denied")
		})
		Convey("A failed envelope without message gets the generic message", func() {
			srv := dashboardServer(&calls, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"success": false}`)
			})
			defer srv.Close()
			_, err := NewHTTPTransport(srv.URL, "en").Snapshot(ctx)
			So(err.Error(), ShouldEqual, "Error loading dashboard data")
		})
		Convey("Non 2xx status and garbage are transport errors", func() {
			srv := dashboardServer(&calls, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/dashboard/data" {
					http.Error(w, "oops", http.StatusBadGateway)
					return
				}
				io.WriteString(w, "<html>")
			})
			defer srv.Close()
			tr := NewHTTPTransport(srv.URL, "en")
			_, err := tr.Snapshot(ctx)
			So(exceptions.IsTransport(err), ShouldBeTrue)
			_, err = tr.Section(ctx, dashboard.Events)
			So(exceptions.IsTransport(err), ShouldBeTrue)
		})
		Convey("A closed server is a transport error", func() {
			_, err := NewHTTPTransport(unreachableServer(), "en").Snapshot(ctx)
			So(exceptions.IsTransport(err), ShouldBeTrue)
		})
	})
}

func TestRPCTransport(t *testing.T) {
	Convey("Testing the JSON-RPC transport", t, func() {
		var calls int32
		ctx := context.Background()
		var (
			received rpc.CallParams
			method   string
			path     string
		)
		srv := dashboardServer(&calls, func(w http.ResponseWriter, r *http.Request) {
			method, path = r.Method, r.URL.Path
			var req rpc.RequestRPC
			json.NewDecoder(r.Body).Decode(&req)
			received = rpc.CallParams{}
			json.Unmarshal(req.Params, &received)
			switch received.Method {
			case SnapshotMethod:
				io.WriteString(w, `{"jsonrpc": "2.0", "id": 1, "result": `+sampleData+`}`)
			default:
				io.WriteString(w, `{"jsonrpc": "2.0", "id": 1, "error": {"code": 200, "message": "Odoo Server Error", "data": {"arguments": ["no such section"]}}}`)
			}
		})
		defer srv.Close()
		tr := NewRPCTransport(srv.URL, "de")
		Convey("The dashboard model method is called", func() {
			snap, err := tr.Snapshot(ctx)
			So(err, ShouldBeNil)
			So(method, ShouldEqual, http.MethodPost)
			So(path, ShouldEqual, CallKwPath)
			So(snap.Members.Active, ShouldEqual, 42)
			So(received.Model, ShouldEqual, DashboardModel)
			So(received.KWArgs["context"], ShouldResemble, map[string]interface{}{"lang": "de"})
		})
		Convey("A JSON-RPC error is a server logic error with the server message", func() {
			_, err := tr.Section(ctx, dashboard.Social)
			So(received.Method, ShouldEqual, SectionMethod)
			So(received.Args, ShouldHaveLength, 1)
			So(string(received.Args[0]), ShouldEqual, `"social"`)
			So(exceptions.KindOf(err), ShouldEqual, exceptions.ServerLogicError)
			So(err.Error(), ShouldEqual, "no such section")
		})
	})
}

func TestFetcher(t *testing.T) {
	Convey("Testing the fetcher fallback", t, func() {
		var primaryCalls, fallbackCalls int32
		ctx := context.Background()
		Convey("The primary result is used when it succeeds", func() {
			primary := dashboardServer(&primaryCalls, okEnvelope)
			defer primary.Close()
			fallback := dashboardServer(&fallbackCalls, okEnvelope)
			defer fallback.Close()
			f := New(NewHTTPTransport(primary.URL, "en"), NewHTTPTransport(fallback.URL, "en"), "en")
			snap, err := f.Fetch(ctx)
			So(err, ShouldBeNil)
			So(snap.Members.Active, ShouldEqual, 42)
			So(atomic.LoadInt32(&fallbackCalls), ShouldEqual, 0)
		})
		Convey("The fallback is tried exactly once on transport failure", func() {
			fallback := dashboardServer(&fallbackCalls, okEnvelope)
			defer fallback.Close()
			f := New(NewHTTPTransport(unreachableServer(), "en"), NewHTTPTransport(fallback.URL, "en"), "en")
			snap, err := f.Fetch(ctx)
			So(err, ShouldBeNil)
			So(snap.Sepa.Amount, ShouldEqual, 2100)
			So(atomic.LoadInt32(&fallbackCalls), ShouldEqual, 1)
			data, err := f.FetchSection(ctx, dashboard.Sepa)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "2025-05-15")
			So(atomic.LoadInt32(&fallbackCalls), ShouldEqual, 2)
		})
		Convey("A server logic error does not trigger the fallback", func() {
			primary := dashboardServer(&primaryCalls, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"success": false, "error": "denied"}`)
			})
			defer primary.Close()
			fallback := dashboardServer(&fallbackCalls, okEnvelope)
			defer fallback.Close()
			f := New(NewHTTPTransport(primary.URL, "en"), NewHTTPTransport(fallback.URL, "en"), "en")
			_, err := f.Fetch(ctx)
			So(exceptions.Is(err, exceptions.Rejected), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "denied")
			So(atomic.LoadInt32(&fallbackCalls), ShouldEqual, 0)
		})
		Convey("Both transports unreachable gives Unreachable", func() {
			f := New(NewHTTPTransport(unreachableServer(), "de"), NewRPCTransport(unreachableServer(), "de"), "de")
			snap, err := f.Fetch(ctx)
			So(exceptions.Is(err, exceptions.Unreachable), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "Fehler beim Laden der Dashboard-Daten")
			So(snap, ShouldResemble, dashboard.EmptySnapshot())
			_, err = f.FetchSection(ctx, dashboard.Members)
			So(exceptions.Is(err, exceptions.Unreachable), ShouldBeTrue)
		})
		Convey("Without fallback a transport failure is Unreachable", func() {
			f := New(NewHTTPTransport(unreachableServer(), "en"), nil, "en")
			_, err := f.Fetch(ctx)
			ue, ok := exceptions.As(err)
			So(ok, ShouldBeTrue)
			So(ue.Kind, ShouldEqual, exceptions.TransportError)
			So(ue.Debug, ShouldNotBeEmpty)
		})
	})
}
