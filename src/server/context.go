// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package server

import (
	"net/http"

	"github.com/gin-gonic/contrib/sessions"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/kulturhaus/kulturhaus/src/rpc"
	"github.com/kulturhaus/kulturhaus/src/tools/exceptions"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// An Envelope is the reply format of the dashboard endpoints
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// The Context allows to pass data across controller layers
// and middlewares.
type Context struct {
	*gin.Context
}

// RPC serializes the given struct as JSON-RPC into the response body.
// The debug information of errors is only sent in Debug mode.
func (c *Context) RPC(code int, obj interface{}, err ...error) {
	id, ok := c.Get("id")
	if !ok {
		var req rpc.RequestRPC
		if err2 := c.BindJSON(&req); err2 != nil {
			c.AbortWithError(http.StatusBadRequest, err2)
			return
		}
		id = req.ID
	}
	if len(err) > 0 && err[0] != nil {
		userError, ok2 := exceptions.As(err[0])
		if !ok2 {
			c.AbortWithError(http.StatusInternalServerError, errors.Wrap(err[0], "error is of unknown type"))
			return
		}
		var debug string
		if viper.GetBool("Debug") {
			debug = userError.Debug
		}
		respErr := rpc.ResponseError{
			JsonRPC: rpc.Version,
			ID:      id.(int64),
			Error: rpc.JSONRPCError{
				Code:    code,
				Message: "Kulturhaus Server Error",
				Data: rpc.JSONRPCErrorData{
					Arguments:     []string{userError.Message},
					ExceptionType: string(userError.Kind),
					Debug:         debug,
				},
			},
		}
		c.JSON(code, respErr)
		return
	}
	resp := rpc.ResponseRPC{
		JsonRPC: rpc.Version,
		ID:      id.(int64),
		Result:  obj,
	}
	c.JSON(code, resp)
}

// BindRPCParams binds the RPC parameters to the given data object.
// It returns false and aborts the request if the parameters are invalid.
func (c *Context) BindRPCParams(data interface{}) bool {
	var req rpc.RequestRPC
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return false
	}
	c.Set("id", req.ID)
	if err := jsonAPI.Unmarshal(req.Params, data); err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return false
	}
	return true
}

// Envelope writes data in a successful envelope, or err in a failed
// one. Only the message of user errors is sent to the client.
func (c *Context) Envelope(data interface{}, err error) {
	if err == nil {
		c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
		return
	}
	msg := "Internal server error"
	if ue, ok := exceptions.As(err); ok {
		msg = ue.Message
	}
	c.Error(err)
	c.JSON(http.StatusOK, Envelope{Success: false, Error: msg})
}

// Session returns the current Session instance
func (c *Context) Session() sessions.Session {
	return sessions.Default(c.Context)
}

// Lang returns the language of the request, from the session or
// the Accept-Language header.
func (c *Context) Lang() string {
	if _, hasSession := c.Get(sessions.DefaultKey); hasSession {
		if lang, ok := c.Session().Get("lang").(string); ok && lang != "" {
			return lang
		}
	}
	accept := c.GetHeader("Accept-Language")
	if len(accept) >= 2 {
		return accept[:2]
	}
	return ""
}

// Super calls the next middleware / handler layer
// It is an alias for Next
func (c *Context) Super() {
	c.Next()
}
