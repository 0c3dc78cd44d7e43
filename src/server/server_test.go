// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kulturhaus/kulturhaus/src/i18n"
	"github.com/kulturhaus/kulturhaus/src/tools/exceptions"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func perform(srv *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestContext(t *testing.T) {
	Convey("Testing the server context", t, func() {
		srv := New()
		grp := srv.Group("/")
		Convey("Envelopes carry data or the user message only", func() {
			grp.GET("/ok", func(c *Context) {
				c.Envelope(map[string]int{"active": 42}, nil)
			})
			grp.GET("/user", func(c *Context) {
				c.Envelope(nil, exceptions.New(exceptions.StateError, exceptions.InvalidSection, "Unknown dashboard section: foo"))
			})
			grp.GET("/internal", func(c *Context) {
				c.Envelope(nil, errors.New("pq: connection refused"))
			})
			So(perform(srv, http.MethodGet, "/ok", "").Body.String(), ShouldEqual, `{"success":true,"data":{"active":42}}`)
			So(perform(srv, http.MethodGet, "/user", "").Body.String(), ShouldEqual, `{"success":false,"error":"Unknown dashboard section: foo"}`)
			w := perform(srv, http.MethodGet, "/internal", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, `{"success":false,"error":"Internal server error"}`)
		})
		Convey("RPC calls reply with the request id", func() {
			type params struct {
				Name string `json:"name"`
			}
			grp.POST("/rpc", func(c *Context) {
				var p params
				if !c.BindRPCParams(&p) {
					return
				}
				if p.Name == "" {
					c.RPC(http.StatusOK, nil, exceptions.New(exceptions.ValidationError, exceptions.EmptyMessage, "Name is required"))
					return
				}
				c.RPC(http.StatusOK, "Hello "+p.Name)
			})
			w := perform(srv, http.MethodPost, "/rpc", `{"jsonrpc":"2.0","id":7,"method":"call","params":{"name":"Jazz"}}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, `{"jsonrpc":"2.0","id":7,"result":"Hello Jazz"}`)

			w = perform(srv, http.MethodPost, "/rpc", `{"jsonrpc":"2.0","id":8,"method":"call","params":{}}`)
			So(w.Body.String(), ShouldEqual, `{"jsonrpc":"2.0","id":8,"error":{"code":200,"message":"Kulturhaus Server Error",`+
				`"data":{"arguments":["Name is required"],"exception_type":"validation","debug":""}}}`)

			grp.POST("/rpc/db", func(c *Context) {
				c.RPC(http.StatusOK, nil, exceptions.Wrap(errors.New("pq: password authentication failed"),
					exceptions.TransportError, exceptions.Unreachable, "Error loading dashboard data"))
			})
			req := `{"jsonrpc":"2.0","id":9,"method":"call","params":{}}`
			w = perform(srv, http.MethodPost, "/rpc/db", req)
			So(w.Body.String(), ShouldEqual, `{"jsonrpc":"2.0","id":9,"error":{"code":200,"message":"Kulturhaus Server Error",`+
				`"data":{"arguments":["Error loading dashboard data"],"exception_type":"transport","debug":""}}}`)
			viper.Set("Debug", true)
			defer viper.Set("Debug", false)
			w = perform(srv, http.MethodPost, "/rpc/db", req)
			So(w.Body.String(), ShouldContainSubstring, `"debug":"pq: password authentication failed"`)

			w = perform(srv, http.MethodPost, "/rpc", `not json`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
		Convey("The language comes from the session, then the headers", func() {
			var langs []string
			grp.GET("/lang", func(c *Context) {
				langs = append(langs, c.Lang())
				c.Session().Set("lang", "en_US")
				langs = append(langs, c.Lang())
				c.String(http.StatusOK, "")
			})
			perform(srv, http.MethodGet, "/lang", "", "Accept-Language", "de-DE,de;q=0.9")
			So(langs, ShouldResemble, []string{"de", "en_US"})
		})
	})
}

func TestModules(t *testing.T) {
	Convey("Testing module hooks", t, func() {
		var calls []string
		RegisterModule(&Module{
			Name:     "test_first",
			PreInit:  func() { calls = append(calls, "first.pre") },
			PostInit: func() { calls = append(calls, "first.post") },
		})
		RegisterModule(&Module{
			Name:    "test_second",
			PreInit: func() { calls = append(calls, "second.pre") },
		})
		So(Modules.Names(), ShouldResemble, []string{"test_first", "test_second"})
		So(func() { RegisterModule(&Module{Name: "test_first"}) }, ShouldPanic)

		dir := t.TempDir()
		So(os.MkdirAll(filepath.Join(dir, "i18n"), 0755), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dir, "i18n", "kulturhaus.yaml"),
			[]byte("de:\n  dashboard.ready: \"Alles aktuell\"\n"), 0644), ShouldBeNil)
		viper.Set("DataDir", dir)
		defer viper.Set("DataDir", "")

		PreInit()
		PostInit()
		So(calls, ShouldResemble, []string{"first.pre", "second.pre", "first.post"})
		So(i18n.T("de", "dashboard.ready"), ShouldEqual, "Alles aktuell")
		So(i18n.T("en", "dashboard.ready"), ShouldEqual, "Up to date")
	})
}
