// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package actions

import (
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/kulturhaus/kulturhaus/src/tools/exceptions"
	"github.com/pkg/errors"
)

// XML IDs of the dashboard navigation actions
const (
	MembersAction     = "kulturhaus_dashboard_action_members"
	SepaBatchesAction = "kulturhaus_dashboard_action_sepa_batches"
	EventsAction      = "kulturhaus_dashboard_action_events"
	// DashboardAction opens the dashboard itself
	DashboardAction   = "kulturhaus_dashboard_action"
)

// A Navigator opens the records described by an action in the host environment
type Navigator interface {
	OpenResource(action *Action) error
}

// NavigatorFunc adapts an ordinary function to the Navigator interface
type NavigatorFunc func(action *Action) error

// OpenResource calls f(action)
func (f NavigatorFunc) OpenResource(action *Action) error {
	return f(action)
}

// A LinkNavigator turns actions into web client URLs and hands them to Open
type LinkNavigator struct {
	BaseURL string
	Open    func(link string) error
}

// Link returns the web client URL of the given action
func (l LinkNavigator) Link(action *Action) string {
	values := url.Values{}
	if action.ID != 0 {
		values.Set("action", strconv.FormatInt(action.ID, 10))
	}
	values.Set("model", action.Model)
	if len(action.Views) > 0 {
		values.Set("view_type", string(action.Views[0]))
	}
	if action.ResID != 0 {
		values.Set("id", strconv.FormatInt(action.ResID, 10))
	}
	return strings.TrimRight(l.BaseURL, "/") + "/web#" + values.Encode()
}

// OpenResource opens the link of the given action
func (l LinkNavigator) OpenResource(action *Action) error {
	if action == nil || action.Model == "" {
		return errors.New("cannot open an action without model")
	}
	if l.Open == nil {
		log.Info("Navigating", "link", l.Link(action))
		return nil
	}
	if err := l.Open(l.Link(action)); err != nil {
		return exceptions.Wrap(err, exceptions.TransportError, exceptions.Unreachable, "Unable to open "+action.Name)
	}
	return nil
}

// A Recorder is a Navigator that keeps the opened actions
type Recorder struct {
	sync.Mutex
	opened []*Action
}

// OpenResource records the action
func (r *Recorder) OpenResource(action *Action) error {
	r.Lock()
	defer r.Unlock()
	r.opened = append(r.opened, action)
	return nil
}

// Opened returns the recorded actions
func (r *Recorder) Opened() []*Action {
	r.Lock()
	defer r.Unlock()
	return append([]*Action(nil), r.opened...)
}

// Open looks up the action with the given xmlid, translates it and
// forwards it to nav.
func Open(nav Navigator, xmlid, lang string) error {
	action := Registry.GetByXMLID(xmlid)
	if action == nil {
		return errors.Errorf("unknown action %s", xmlid)
	}
	return nav.OpenResource(action.Translated(lang))
}

// registerDashboardActions adds the fixed navigation descriptors of the dashboard
func registerDashboardActions(c *Collection) {
	c.Add(&Action{
		XMLID:    MembersAction,
		Name:     "Members",
		NameKey:  "action.members",
		Model:    "res.partner",
		ViewMode: "list,form",
		Domain: Domain{
			{"is_company", "=", false},
			{"sepa_mandate_active", "=", true},
		},
	})
	c.Add(&Action{
		XMLID:    SepaBatchesAction,
		Name:     "SEPA Batches",
		NameKey:  "action.sepa_batches",
		Model:    "kulturhaus.sepa.batch",
		ViewMode: "list,form",
	})
	c.Add(&Action{
		XMLID:    EventsAction,
		Name:     "Events",
		NameKey:  "action.events",
		Model:    "event.event",
		ViewMode: "list,kanban,form,calendar",
	})
	c.Add(&Action{
		XMLID:   DashboardAction,
		Name:    "Kulturhaus Dashboard",
		NameKey: "dashboard.title",
		Type:    ActionClient,
		Tag:     "kulturhaus_dashboard",
		Target:  "main",
	})
}
