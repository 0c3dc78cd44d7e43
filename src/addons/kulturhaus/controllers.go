// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package kulturhaus

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/kulturhaus/kulturhaus/src/controllers"
	"github.com/kulturhaus/kulturhaus/src/dashboard"
	"github.com/kulturhaus/kulturhaus/src/dashboard/fetch"
	"github.com/kulturhaus/kulturhaus/src/i18n"
	"github.com/kulturhaus/kulturhaus/src/mentions"
	"github.com/kulturhaus/kulturhaus/src/menus"
	"github.com/kulturhaus/kulturhaus/src/quickaction"
	"github.com/kulturhaus/kulturhaus/src/rpc"
	"github.com/kulturhaus/kulturhaus/src/server"
	"github.com/kulturhaus/kulturhaus/src/tools/exceptions"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// A SnapshotProvider computes the dashboard data
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (dashboard.Snapshot, error)
	Section(ctx context.Context, name dashboard.SectionName) (interface{}, error)
}

// Handlers serve the dashboard and quick action routes
type Handlers struct {
	Provider     SnapshotProvider
	QuickActions quickaction.Client
	// Lang is used for messages when the request does not tell its language
	Lang string
}

// declareControllers adds the routes of h to the given group
func declareControllers(root *controllers.Group, h *Handlers) {
	dash := root.AddGroup("/dashboard")
	dash.AddController(http.MethodGet, "/data", h.Data)
	dash.AddController(http.MethodGet, "/refresh/:section", h.Refresh)
	dash.AddController(http.MethodGet, "/menus", h.Menus)
	dash.AddController(http.MethodPost, "/quick-action/:channel", h.QuickAction)
	root.AddController(http.MethodPost, "/quick-action/:channel", h.QuickAction)
	root.AddController(http.MethodPost, fetch.CallKwPath, h.CallKW)
	root.AddController(http.MethodGet, "/mail/mention_suggestions", h.MentionSuggestions)
	rep := root.AddGroup("/report")
	rep.AddController(http.MethodGet, "/:format/:name", h.Report)
	rep.AddController(http.MethodGet, "/:format/:name/:ids", h.Report)
}

// Data returns the full dashboard snapshot
func (h *Handlers) Data(c *server.Context) {
	snap, err := h.Provider.Snapshot(c.Request.Context())
	c.Envelope(snap, h.loadError(c, err))
}

// Refresh returns the data of the section given in the URL
func (h *Handlers) Refresh(c *server.Context) {
	name, ok := dashboard.ParseSectionName(c.Param("section"))
	if !ok {
		c.Envelope(nil, exceptions.New(exceptions.ValidationError, exceptions.InvalidSection,
			i18n.T(h.lang(c), "dashboard.invalid_section", c.Param("section"))))
		return
	}
	data, err := h.Provider.Section(c.Request.Context(), name)
	c.Envelope(data, h.loadError(c, err))
}

// QuickAction posts the message of the request body to the channel
// given in the URL.
func (h *Handlers) QuickAction(c *server.Context) {
	lang := h.lang(c)
	channel, err := quickaction.ParseChannel(c.Param("channel"), lang)
	if err != nil {
		c.JSON(http.StatusNotFound, quickaction.Result{Error: err.Error()})
		return
	}
	var req quickaction.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug("Malformed quick action request", "error", err)
		c.JSON(http.StatusBadRequest, quickaction.Result{Error: i18n.T(lang, "quick_action.failed")})
		return
	}
	res, err := h.QuickActions.Post(c.Request.Context(), channel, req.Message)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusServiceUnavailable, quickaction.Result{Error: i18n.T(lang, "quick_action.failed")})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Menus returns the dashboard menu tree in the request language
func (h *Handlers) Menus(c *server.Context) {
	c.Envelope(menus.Registry.Tree(h.lang(c)), nil)
}

// MentionSuggestions returns the group mention suggestions for the
// thread model and search term given in the query.
func (h *Handlers) MentionSuggestions(c *server.Context) {
	suggestions := mentions.Suggest(c.Query("model"), c.Query("term"), h.lang(c), nil)
	if suggestions == nil {
		suggestions = []mentions.Suggestion{}
	}
	c.JSON(http.StatusOK, suggestions)
}

// CallKW serves the dashboard model methods through JSON-RPC
func (h *Handlers) CallKW(c *server.Context) {
	var params rpc.CallParams
	if !c.BindRPCParams(&params) {
		return
	}
	lang := h.lang(c)
	if kwCtx, ok := params.KWArgs["context"].(map[string]interface{}); ok {
		if l, ok := kwCtx["lang"].(string); ok && l != "" {
			lang = l
		}
	}
	if params.Model != fetch.DashboardModel {
		c.RPC(http.StatusOK, nil, exceptions.New(exceptions.ServerLogicError, exceptions.Rejected,
			"Unknown model: "+params.Model))
		return
	}
	ctx := c.Request.Context()
	var arg string
	if len(params.Args) > 0 {
		if err := jsonAPI.Unmarshal(params.Args[0], &arg); err != nil {
			c.RPC(http.StatusOK, nil, exceptions.Wrap(err, exceptions.ValidationError, exceptions.Rejected,
				"Invalid argument for "+params.Method))
			return
		}
	}
	switch params.Method {
	case fetch.SnapshotMethod:
		snap, err := h.Provider.Snapshot(ctx)
		c.RPC(http.StatusOK, snap, h.rpcError(err, lang))
	case fetch.SectionMethod:
		name, ok := dashboard.ParseSectionName(arg)
		if !ok {
			c.RPC(http.StatusOK, nil, exceptions.New(exceptions.ValidationError, exceptions.InvalidSection,
				i18n.T(lang, "dashboard.invalid_section", arg)))
			return
		}
		data, err := h.Provider.Section(ctx, name)
		c.RPC(http.StatusOK, data, h.rpcError(err, lang))
	case quickaction.InstagramPost.Method(), quickaction.TelegramMessage.Method():
		channel := quickaction.InstagramPost
		if params.Method == quickaction.TelegramMessage.Method() {
			channel = quickaction.TelegramMessage
		}
		res, err := h.QuickActions.Post(ctx, channel, arg)
		if err != nil {
			c.RPC(http.StatusOK, nil, exceptions.Wrap(err, exceptions.TransportError, exceptions.SubmissionFailed,
				i18n.T(lang, "quick_action.failed")))
			return
		}
		c.RPC(http.StatusOK, res)
	default:
		c.RPC(http.StatusOK, nil, exceptions.New(exceptions.ServerLogicError, exceptions.Rejected,
			"Unknown method: "+params.Method))
	}
}

// loadError turns a provider error into a user error
func (h *Handlers) loadError(c *server.Context, err error) error {
	if err == nil {
		return nil
	}
	log.Error("Unable to compute dashboard data", "path", c.Request.URL.Path, "error", err)
	return h.rpcError(err, h.lang(c))
}

func (h *Handlers) rpcError(err error, lang string) error {
	if err == nil {
		return nil
	}
	if _, ok := exceptions.As(err); ok {
		return err
	}
	return exceptions.Wrap(err, exceptions.ServerLogicError, exceptions.Rejected, i18n.T(lang, "dashboard.failed"))
}

func (h *Handlers) lang(c *server.Context) string {
	if lang := c.Lang(); lang != "" && i18n.Registry.Has(lang, "dashboard.failed") {
		return lang
	}
	if h.Lang != "" {
		return h.Lang
	}
	return DefaultLang
}
