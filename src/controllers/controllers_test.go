// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kulturhaus/kulturhaus/src/server"
	. "github.com/smartystreets/goconvey/convey"
)

func performRequest(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newServer() *server.Server {
	gin.SetMode(gin.ReleaseMode)
	return &server.Server{Engine: gin.New()}
}

func pong(ctx *server.Context) {
	ctx.String(http.StatusOK, "pong")
}

func TestControllers(t *testing.T) {
	Convey("Testing inheritable controllers", t, func() {
		registry := NewGroup("/")
		grp := registry.AddGroup("/dashboard")
		Convey("Groups can be retrieved", func() {
			got, ok := registry.GetGroup("/dashboard")
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, grp)
			So(registry.MustGetGroup("/dashboard"), ShouldEqual, grp)
			So(func() { registry.MustGetGroup("/nope") }, ShouldPanic)
			So(func() { registry.AddGroup("/dashboard") }, ShouldPanic)
		})
		Convey("Simple controllers are served", func() {
			grp.AddController(http.MethodGet, "/ping", pong)
			So(grp.HasController(http.MethodGet, "/ping"), ShouldBeTrue)
			So(grp.HasController(http.MethodPost, "/ping"), ShouldBeFalse)
			So(func() { grp.AddController(http.MethodGet, "/ping", pong) }, ShouldPanic)
			srv := newServer()
			registry.Mount(srv.Group("/"))
			r := performRequest(srv, http.MethodGet, "/dashboard/ping")
			So(r.Code, ShouldEqual, http.StatusOK)
			So(r.Body.String(), ShouldEqual, "pong")
		})
		Convey("Controllers can be extended", func() {
			grp.AddController(http.MethodGet, "/ping", pong)
			grp.ExtendController(http.MethodGet, "/ping", func(ctx *server.Context) {
				ctx.String(http.StatusOK, "before*")
				ctx.String(http.StatusOK, "*after")
			})
			grp.ExtendController(http.MethodGet, "/ping", func(ctx *server.Context) {
				ctx.Super()
				ctx.String(http.StatusOK, "/after2")
			})
			srv := newServer()
			registry.Mount(srv.Group("/"))
			r := performRequest(srv, http.MethodGet, "/dashboard/ping")
			So(r.Code, ShouldEqual, http.StatusOK)
			So(r.Body.String(), ShouldEqual, "before**afterpong/after2")
		})
		Convey("Controllers can be overridden", func() {
			grp.AddController(http.MethodGet, "/ping", pong)
			grp.OverrideController(http.MethodGet, "/ping", func(ctx *server.Context) {
				ctx.String(http.StatusOK, "before*")
				ctx.String(http.StatusOK, "*after")
			})
			grp.ExtendController(http.MethodGet, "/ping", func(ctx *server.Context) {
				ctx.Super()
				ctx.String(http.StatusOK, "/after2")
			})
			srv := newServer()
			registry.Mount(srv.Group("/"))
			r := performRequest(srv, http.MethodGet, "/dashboard/ping")
			So(r.Body.String(), ShouldEqual, "before**after/after2")
			So(func() { grp.OverrideController(http.MethodPost, "/nope", pong) }, ShouldPanic)
			So(func() { grp.ExtendController(http.MethodPost, "/nope", pong) }, ShouldPanic)
		})
		Convey("Group middlewares run first", func() {
			grp.AddMiddleWare(func(ctx *server.Context) {
				ctx.String(http.StatusOK, "middleware-")
				ctx.Next()
				ctx.String(http.StatusOK, "-middleware")
			})
			grp.AddMiddleWare(func(ctx *server.Context) {
				ctx.String(http.StatusOK, "auth-")
			})
			grp.AddController(http.MethodGet, "/ping", pong)
			grp.ExtendController(http.MethodGet, "/ping", func(ctx *server.Context) {
				ctx.String(http.StatusOK, "before/")
			})
			srv := newServer()
			registry.Mount(srv.Group("/"))
			r := performRequest(srv, http.MethodGet, "/dashboard/ping")
			So(r.Code, ShouldEqual, http.StatusOK)
			So(r.Body.String(), ShouldEqual, "auth-middleware-before/pong-middleware")
		})
		Convey("Routes lists all the routes", func() {
			grp.AddController(http.MethodGet, "/data", pong)
			grp.AddController(http.MethodGet, "/refresh/:section", pong)
			registry.AddController(http.MethodPost, "/quick-action/:channel", pong)
			So(registry.Routes(), ShouldResemble, []Route{
				{Path: "/dashboard/data", Method: http.MethodGet},
				{Path: "/dashboard/refresh/:section", Method: http.MethodGet},
				{Path: "/quick-action/:channel", Method: http.MethodPost},
			})
		})
	})
}
