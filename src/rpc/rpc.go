// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package rpc defines the JSON-RPC 2.0 messages exchanged between
// the web client and the server.
package rpc

import (
	"encoding/json"
)

// Version is the JSON-RPC version of all messages
const Version = "2.0"

// A RequestRPC is the message format expected from a client
type RequestRPC struct {
	JsonRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// A ResponseRPC is the message format sent back to a client
// in case of success
type ResponseRPC struct {
	JsonRPC string      `json:"jsonrpc"`
	ID      int64       `json:"id"`
	Result  interface{} `json:"result"`
}

// A ResponseError is the message format sent back to a
// client in case of failure
type ResponseError struct {
	JsonRPC string       `json:"jsonrpc"`
	ID      int64        `json:"id"`
	Error   JSONRPCError `json:"error"`
}

// JSONRPCErrorData is the format of the Data field of an Error Response
type JSONRPCErrorData struct {
	Arguments     []string `json:"arguments"`
	ExceptionType string   `json:"exception_type"`
	Debug         string   `json:"debug"`
}

// JSONRPCError is the format of an Error in a ResponseError
type JSONRPCError struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Data    JSONRPCErrorData `json:"data"`
}

// CallParams are the params of a model method call (the "call_kw" method)
type CallParams struct {
	Model  string                 `json:"model"`
	Method string                 `json:"method"`
	Args   []json.RawMessage      `json:"args"`
	KWArgs map[string]interface{} `json:"kwargs"`
}

// A Response is a decoded JSON-RPC response: exactly one of
// Result and Error is set.
type Response struct {
	JsonRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *JSONRPCError   `json:"error"`
}

// UserMessage returns the message to display for this error
func (e JSONRPCError) UserMessage() string {
	if len(e.Data.Arguments) > 0 && e.Data.Arguments[0] != "" {
		return e.Data.Arguments[0]
	}
	return e.Message
}
