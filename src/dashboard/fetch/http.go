// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/kulturhaus/kulturhaus/src/dashboard"
	"github.com/kulturhaus/kulturhaus/src/tools/exceptions"
	"github.com/pkg/errors"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultTimeout is the timeout of the default http client of the transports
const DefaultTimeout = 10 * time.Second

// maxBodySize caps the size of the responses we read
const maxBodySize = 4 << 20

// An Envelope is the reply format of the dashboard endpoints
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// HTTPTransport reads the dashboard through its dedicated endpoints:
//
//	GET {BaseURL}/dashboard/data
//	GET {BaseURL}/dashboard/refresh/{section}
type HTTPTransport struct {
	BaseURL string
	Client  *http.Client
	Lang    string
}

// NewHTTPTransport returns an HTTPTransport for the server at baseURL
func NewHTTPTransport(baseURL, lang string) *HTTPTransport {
	return &HTTPTransport{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: DefaultTimeout},
		Lang:    lang,
	}
}

// Name of the transport
func (t *HTTPTransport) Name() string {
	return "http"
}

// Snapshot returns the full dashboard snapshot
func (t *HTTPTransport) Snapshot(ctx context.Context) (dashboard.Snapshot, error) {
	data, err := t.get(ctx, "/dashboard/data")
	if err != nil {
		return dashboard.EmptySnapshot(), err
	}
	snap, err := dashboard.DecodeSnapshot(data)
	if err != nil {
		return dashboard.EmptySnapshot(), exceptions.Transport(err, "malformed dashboard data")
	}
	return snap, nil
}

// Section returns the raw data of one section
func (t *HTTPTransport) Section(ctx context.Context, name dashboard.SectionName) (json.RawMessage, error) {
	return t.get(ctx, "/dashboard/refresh/"+url.PathEscape(string(name)))
}

// get calls the given path and returns the data of the reply envelope
func (t *HTTPTransport) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequest(http.MethodGet, t.BaseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create request")
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	body, err := do(t.client(), req)
	if err != nil {
		return nil, err
	}
	var env Envelope
	if err := jsonAPI.Unmarshal(body, &env); err != nil {
		return nil, exceptions.Transport(err, "malformed reply from %s", path)
	}
	if !env.Success {
		return nil, rejected(t.Lang, env.Error)
	}
	return env.Data, nil
}

func (t *HTTPTransport) client() *http.Client {
	if t.Client == nil {
		return http.DefaultClient
	}
	return t.Client
}

// do sends req and returns the body of a 2xx response.
// All failures are transport errors.
func do(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, exceptions.Transport(err, "%s %s failed", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, exceptions.Transport(err, "unable to read reply of %s", req.URL.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, exceptions.Transport(errors.Errorf("unexpected status %d", resp.StatusCode), "%s %s failed", req.Method, req.URL.Path)
	}
	return body, nil
}
