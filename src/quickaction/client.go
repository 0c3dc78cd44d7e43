// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package quickaction

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/kulturhaus/kulturhaus/src/tools/exceptions"
	"github.com/pkg/errors"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// A Request is the body of a quick action call
type Request struct {
	Message string `json:"message"`
}

// A Result is the reply of the server to a quick action
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// A Client sends quick actions to the server
type Client interface {
	Post(ctx context.Context, channel Channel, message string) (Result, error)
}

// HTTPClient posts quick actions to {BaseURL}/quick-action/{channel}
type HTTPClient struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPClient returns an HTTPClient for the server at baseURL
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Post sends message to the given channel. Network failures, timeouts and
// non 2xx replies are transport errors. A well-formed reply is returned
// as is, even if it reports a failure.
func (h *HTTPClient) Post(ctx context.Context, channel Channel, message string) (Result, error) {
	if !channel.Valid() {
		return Result{}, errors.Errorf("invalid channel %d", channel)
	}
	body, err := jsonAPI.Marshal(Request{Message: message})
	if err != nil {
		return Result{}, errors.Wrap(err, "unable to marshal quick action")
	}
	req, err := http.NewRequest(http.MethodPost, h.BaseURL+"/quick-action/"+channel.Operation(), bytes.NewReader(body))
	if err != nil {
		return Result{}, errors.Wrap(err, "unable to create request")
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, exceptions.Transport(err, "quick action %s failed", channel)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, exceptions.Transport(err, "unable to read reply of quick action %s", channel)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, exceptions.Transport(errors.Errorf("unexpected status %d", resp.StatusCode), "quick action %s failed", channel)
	}
	var res Result
	if err := jsonAPI.Unmarshal(data, &res); err != nil {
		return Result{}, exceptions.Transport(err, "malformed reply of quick action %s", channel)
	}
	return res, nil
}
