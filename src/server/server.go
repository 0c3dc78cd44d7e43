// Copyright 2016 NDP Systèmes. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"crypto/tls"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/kulturhaus/kulturhaus/src/tools/logging"
	"github.com/spf13/viper"
	"golang.org/x/crypto/acme/autocert"
)

// SessionName is the name of the session cookie
const SessionName = "kulturhaus-session"

// default keys of the session cookie store, overridden by Server.SessionSecret
const (
	defaultSessionKey = ">r&5#5T/sG-jnf=EW8$(WQX'-m2R6Gk*^qqr`CxEtG'wQ[/'G@`NYn^on?b!4G`9"
	defaultCryptKey   = "!WY9Q|}09!4Ke=@w0HS|]$u,p1f^k(5T"
)

// A Server is the http server of the application
// It is internally a wrapper around a gin.Engine
type Server struct {
	*gin.Engine
}

// New returns a Server with the recovery, logging and session middlewares
func New() *Server {
	srv := &Server{gin.New()}
	sessionKey := viper.GetString("Server.SessionSecret")
	if sessionKey == "" {
		sessionKey = defaultSessionKey
	}
	store := sessions.NewCookieStore([]byte(sessionKey), []byte(defaultCryptKey))
	srv.Use(logging.LogForGin(log))
	srv.Use(logging.RecoveryForGin())
	srv.Use(sessions.Sessions(SessionName, store))
	return srv
}

// Group creates a new router group. You should add all the routes that have common middlwares or the same path prefix.
// For example, all the routes that use a common middlware for authorization could be grouped.
func (s *Server) Group(relativePath string, handlers ...HandlerFunc) *RouterGroup {
	return &RouterGroup{
		RouterGroup: *s.Engine.Group(relativePath, wrapContextFuncs(handlers...)...),
	}
}

// EnableProfiling mounts the pprof handlers under /debug/pprof
func (s *Server) EnableProfiling() {
	pprof.Register(s.Engine)
}

// Serve listens on addr until ctx is done, then shuts the server down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("Kulturhaus is up and running HTTP", "address", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		log.Error("HTTP server stopped", "error", err)
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != http.ErrServerClosed {
		return err
	}
	return nil
}

// RunTLS attaches the router to a http.Server and starts listening and serving HTTPS (secure) requests.
// It is a shortcut for http.ListenAndServeTLS(addr, certFile, keyFile, router)
// Note: this method will block the calling goroutine indefinitely unless an error happens.
func (s *Server) RunTLS(addr string, certFile string, keyFile string) (err error) {
	defer func() { log.Error("HTTPS server stopped", "error", err) }()

	log.Info("Kulturhaus is up and running HTTPS", "address", addr, "cert", certFile, "key", keyFile)
	err = http.ListenAndServeTLS(addr, certFile, keyFile, s)
	return
}

// RunAutoTLS attaches the router to a http.Server and starts listening and serving HTTPS (secure) requests on port 443
// for all interfaces.
// It automatically gets certificate for the given domain from Letsencrypt.
// Note: this method will block the calling goroutine indefinitely unless an error happens.
func (s *Server) RunAutoTLS(domain string) (err error) {
	defer func() { log.Error("HTTPS server stopped", "error", err) }()

	log.Info("Kulturhaus is up and running HTTPS auto", "domain", domain)

	cacheDir := filepath.Join(viper.GetString("DataDir"), "autotls")
	m := &autocert.Manager{
		Cache:      autocert.DirCache(cacheDir),
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domain),
	}
	go http.ListenAndServe(":http", m.HTTPHandler(nil))
	srv := &http.Server{
		Addr:      ":https",
		TLSConfig: &tls.Config{GetCertificate: m.GetCertificate},
		Handler:   s,
	}
	err = srv.ListenAndServeTLS("", "")
	return
}

var kulturhausServer *Server
var log logging.Logger

// GetServer return the http server instance
func GetServer() *Server {
	return kulturhausServer
}

func init() {
	log = logging.GetLogger("server")
	// Set to ReleaseMode now for tests and is overridden later (cmd/server.go)
	gin.SetMode(gin.ReleaseMode)
	kulturhausServer = New()
}
