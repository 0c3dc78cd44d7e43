// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/kulturhaus/kulturhaus/src/dashboard"
	"github.com/kulturhaus/kulturhaus/src/rpc"
	"github.com/kulturhaus/kulturhaus/src/tools/exceptions"
	"github.com/pkg/errors"
)

// Model methods called by the RPCTransport
const (
	DashboardModel     = "kulturhaus.dashboard"
	SnapshotMethod     = "get_dashboard_data"
	SectionMethod      = "get_section_data"
	CallKwPath         = "/web/dataset/call_kw"
	callKwRPCMethod    = "call"
	defaultRPCLanguage = "en"
)

// RPCTransport reads the dashboard by calling the dashboard model
// methods through the generic JSON-RPC endpoint of the server.
type RPCTransport struct {
	BaseURL string
	Client  *http.Client
	Lang    string
	lastID  int64
}

// NewRPCTransport returns an RPCTransport for the server at baseURL
func NewRPCTransport(baseURL, lang string) *RPCTransport {
	return &RPCTransport{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: DefaultTimeout},
		Lang:    lang,
	}
}

// Name of the transport
func (t *RPCTransport) Name() string {
	return "rpc"
}

// Snapshot returns the full dashboard snapshot
func (t *RPCTransport) Snapshot(ctx context.Context) (dashboard.Snapshot, error) {
	res, err := t.call(ctx, SnapshotMethod)
	if err != nil {
		return dashboard.EmptySnapshot(), err
	}
	snap, err := dashboard.DecodeSnapshot(res)
	if err != nil {
		return dashboard.EmptySnapshot(), exceptions.Transport(err, "malformed dashboard data")
	}
	return snap, nil
}

// Section returns the raw data of one section
func (t *RPCTransport) Section(ctx context.Context, name dashboard.SectionName) (json.RawMessage, error) {
	return t.call(ctx, SectionMethod, string(name))
}

// call calls the given method of the dashboard model and returns its result
func (t *RPCTransport) call(ctx context.Context, method string, args ...interface{}) (json.RawMessage, error) {
	rawArgs := make([]json.RawMessage, len(args))
	for i, arg := range args {
		data, err := jsonAPI.Marshal(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to marshal argument %d", i)
		}
		rawArgs[i] = data
	}
	params, err := jsonAPI.Marshal(rpc.CallParams{
		Model:  DashboardModel,
		Method: method,
		Args:   rawArgs,
		KWArgs: map[string]interface{}{"context": map[string]string{"lang": t.lang()}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to marshal params")
	}
	payload, err := jsonAPI.Marshal(rpc.RequestRPC{
		JsonRPC: rpc.Version,
		ID:      atomic.AddInt64(&t.lastID, 1),
		Method:  callKwRPCMethod,
		Params:  params,
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to marshal request")
	}
	req, err := http.NewRequest(http.MethodPost, t.BaseURL+CallKwPath, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "unable to create request")
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	body, err := do(client, req)
	if err != nil {
		return nil, err
	}
	var resp rpc.Response
	if err := jsonAPI.Unmarshal(body, &resp); err != nil {
		return nil, exceptions.Transport(err, "malformed JSON-RPC reply")
	}
	if resp.Error != nil {
		return nil, rejected(t.Lang, resp.Error.UserMessage())
	}
	return resp.Result, nil
}

func (t *RPCTransport) lang() string {
	if t.Lang == "" {
		return defaultRPCLanguage
	}
	return t.Lang
}
