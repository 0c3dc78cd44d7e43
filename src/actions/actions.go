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

package actions

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/kulturhaus/kulturhaus/src/i18n"
)

// An ActionType defines the type of action
type ActionType string

// Action types
const (
	ActionActWindow   ActionType = "ir.actions.act_window"
	ActionServer      ActionType = "ir.actions.server"
	ActionClient      ActionType = "ir.actions.client"
	ActionCloseWindow ActionType = "ir.actions.act_window_close"
)

// A ViewType is the type of a view an action can open
type ViewType string

// View types
const (
	ViewTypeList     ViewType = "list"
	ViewTypeTree     ViewType = "tree"
	ViewTypeForm     ViewType = "form"
	ViewTypeKanban   ViewType = "kanban"
	ViewTypeCalendar ViewType = "calendar"
)

// Registry is the action collection of the application
var Registry *Collection

// A DomainLeaf is a single [field, operator, value] condition
type DomainLeaf [3]interface{}

// A Domain is a list of conditions that are ANDed together
type Domain []DomainLeaf

// String returns the domain in the form of the web client
func (d Domain) String() string {
	if len(d) == 0 {
		return "[]"
	}
	res, err := json.Marshal(d)
	if err != nil {
		return "[]"
	}
	return string(res)
}

// An ActionString is the concatenation of the action type and its ID
// e.g. ir.actions.act_window,76
type ActionString struct {
	Type string
	ID   int64
}

// MarshalJSON for the actionString type. Marshals to false if the action string is empty
func (as ActionString) MarshalJSON() ([]byte, error) {
	if as.ID == 0 {
		return json.Marshal(false)
	}
	return json.Marshal(fmt.Sprintf("%s,%d", as.Type, as.ID))
}

// A Collection is a collection of actions
type Collection struct {
	sync.RWMutex
	actions     map[string]*Action
	actionsByID map[int64]*Action
	order       []*Action
}

// NewCollection returns a pointer to a new
// Collection instance
func NewCollection() *Collection {
	res := Collection{
		actions:     make(map[string]*Action),
		actionsByID: make(map[int64]*Action),
	}
	return &res
}

// Add sanitizes the given action and adds it to our Collection.
// An action with the same XMLID is replaced.
func (ar *Collection) Add(a *Action) {
	ar.Lock()
	defer ar.Unlock()
	a.Sanitize()
	if old, ok := ar.actions[a.XMLID]; ok {
		a.ID = old.ID
		for i, act := range ar.order {
			if act == old {
				ar.order[i] = a
			}
		}
	} else {
		a.ID = int64(len(ar.order) + 1)
		ar.order = append(ar.order, a)
	}
	ar.actions[a.XMLID] = a
	ar.actionsByID[a.ID] = a
}

// GetByXMLID returns the Action with the given xmlid
func (ar *Collection) GetByXMLID(id string) *Action {
	ar.RLock()
	defer ar.RUnlock()
	return ar.actions[id]
}

// GetById returns the Action with the given id
func (ar *Collection) GetById(id int64) *Action {
	ar.RLock()
	defer ar.RUnlock()
	return ar.actionsByID[id]
}

// GetAll returns a list of all actions of this Collection
// in the order they were added
func (ar *Collection) GetAll() []*Action {
	ar.RLock()
	defer ar.RUnlock()
	res := make([]*Action, len(ar.order))
	copy(res, ar.order)
	return res
}

// MustGetByXMLID returns the Action with the given xmlid
// It panics if the id is not found in the action registry
func (ar *Collection) MustGetByXMLID(id string) *Action {
	action := ar.GetByXMLID(id)
	if action == nil {
		log.Panic("Action does not exist", "action_id", id)
	}
	return action
}

// An Action is a navigation descriptor. It is forwarded as is
// to the host environment which opens the related records.
type Action struct {
	ID         int64                  `json:"id"`
	XMLID      string                 `json:"xmlid"`
	Type       ActionType             `json:"type"`
	Name       string                 `json:"name"`
	Model      string                 `json:"res_model"`
	ResID      int64                  `json:"res_id,omitempty"`
	Domain     Domain                 `json:"domain"`
	ViewMode   string                 `json:"view_mode"`
	Views      []ViewType             `json:"-"`
	Target     string                 `json:"target"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Tag        string                 `json:"tag,omitempty"`
	NameKey    string                 `json:"-"`
	AutoSearch bool                   `json:"auto_search"`
}

// TranslatedName returns the translated name of this action
// in the given language
func (a Action) TranslatedName(lang string) string {
	if a.NameKey == "" || !i18n.Registry.Has(lang, a.NameKey) && !i18n.Registry.Has("en", a.NameKey) {
		return a.Name
	}
	return i18n.T(lang, a.NameKey)
}

// Translated returns a copy of this action with its name in the given language
func (a Action) Translated(lang string) *Action {
	a.Name = a.TranslatedName(lang)
	a.Views = append([]ViewType(nil), a.Views...)
	return &a
}

// Sanitize makes the necessary updates to action definitions.
// It is good practice to call Sanitize before sending an action to the client.
func (a *Action) Sanitize() {
	switch a.Type {
	case "":
		a.Type = ActionActWindow
		a.sanitizeActWindow()
	case ActionActWindow:
		a.sanitizeActWindow()
	}
}

// sanitizeActWindow makes the necessary updates to action definitions. In particular:
// - Add a few default values
// - Parse ViewMode into Views
func (a *Action) sanitizeActWindow() {
	if a.Target == "" {
		a.Target = "current"
	}
	a.AutoSearch = true
	if a.ViewMode == "" {
		a.ViewMode = "list,form"
	}
	a.Views = a.Views[:0]
	for _, mode := range strings.Split(a.ViewMode, ",") {
		mode = strings.TrimSpace(mode)
		if mode == "" {
			continue
		}
		a.Views = append(a.Views, ViewType(mode))
	}
	a.fixViewModes()
}

// fixViewModes makes the necessary changes to the given action.
//
// For OpenERP historical reasons, list views are sometimes called 'tree'.
func (a *Action) fixViewModes() {
	modes := make([]string, len(a.Views))
	for i, v := range a.Views {
		if v == ViewTypeTree {
			a.Views[i] = ViewTypeList
		}
		modes[i] = string(a.Views[i])
	}
	a.ViewMode = strings.Join(modes, ",")
}

// ActionString returns the ActionString associated with this action.
func (a Action) ActionString() ActionString {
	return ActionString{ID: a.ID, Type: string(a.Type)}
}
