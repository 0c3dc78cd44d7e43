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

package menus

import (
	"sort"
	"sync"

	"github.com/kulturhaus/kulturhaus/src/actions"
	"github.com/kulturhaus/kulturhaus/src/i18n"
)

// Registry is the menu Collection of the application
var (
	Registry     *Collection
	bootstrapMap map[string]*Menu
)

// A Collection is a hierarchical and sortable Collection of menus
type Collection struct {
	sync.RWMutex
	Menus        []*Menu
	menusMap     map[string]*Menu
	menusMapByID map[int64]*Menu
}

func (mc *Collection) Len() int {
	return len(mc.Menus)
}

func (mc *Collection) Swap(i, j int) {
	mc.Menus[i], mc.Menus[j] = mc.Menus[j], mc.Menus[i]
}

func (mc *Collection) Less(i, j int) bool {
	return mc.Menus[i].Sequence < mc.Menus[j].Sequence
}

// Add adds a menu to the menu Collection
func (mc *Collection) Add(m *Menu) {
	if m.Action != nil {
		m.HasAction = true
	}
	mc.Lock()
	defer mc.Unlock()
	m.ID = int64(len(mc.menusMap) + 1)
	var targetCollection *Collection
	if m.Parent != nil {
		if m.Parent.Children == nil {
			m.Parent.Children = NewCollection()
		}
		targetCollection = m.Parent.Children
		m.Parent.HasChildren = true
	} else {
		targetCollection = mc
	}
	targetCollection.Menus = append(targetCollection.Menus, m)
	sort.Stable(targetCollection)

	// We add the menu to the top collection
	mc.menusMap[m.XMLID] = m
	mc.menusMapByID[m.ID] = m
}

// GetByID returns the Menu with the given id
func (mc *Collection) GetByID(id int64) *Menu {
	mc.RLock()
	defer mc.RUnlock()
	return mc.menusMapByID[id]
}

// GetByXMLID returns the Menu with the given xmlid
func (mc *Collection) GetByXMLID(xmlid string) *Menu {
	mc.RLock()
	defer mc.RUnlock()
	return mc.menusMap[xmlid]
}

// GetByShortcut returns the menu with an action that is opened with
// the given key, if any.
func (mc *Collection) GetByShortcut(key rune) *Menu {
	mc.RLock()
	defer mc.RUnlock()
	for _, menu := range mc.menusMap {
		if menu.Shortcut == key && menu.HasAction {
			return menu
		}
	}
	return nil
}

// All returns all menus recursively, ordered by ID
func (mc *Collection) All() []*Menu {
	mc.RLock()
	defer mc.RUnlock()
	var res []*Menu
	for _, menu := range mc.menusMap {
		res = append(res, menu)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].ID < res[j].ID
	})
	return res
}

// NewCollection returns a pointer to a new
// Collection instance
func NewCollection() *Collection {
	res := Collection{
		menusMap:     make(map[string]*Menu),
		menusMapByID: make(map[int64]*Menu),
	}
	return &res
}

// A Menu is the representation of a single menu item
type Menu struct {
	ID          int64
	XMLID       string
	Name        string
	NameKey     string
	ParentID    string
	Parent      *Menu
	Children    *Collection
	Sequence    uint8
	ActionID    string
	Action      *actions.Action
	Shortcut    rune
	HasChildren bool
	HasAction   bool
	WebIcon     string
}

// TranslatedName returns the translated name of this menu
// in the given language
func (m Menu) TranslatedName(lang string) string {
	if m.NameKey != "" && (i18n.Registry.Has(lang, m.NameKey) || i18n.Registry.Has(i18n.DefaultLang, m.NameKey)) {
		return i18n.T(lang, m.NameKey)
	}
	if m.Name == "" && m.Action != nil {
		return m.Action.TranslatedName(lang)
	}
	return m.Name
}

// An Item is the client representation of a menu and its children
type Item struct {
	ID       int64  `json:"id"`
	XMLID    string `json:"xmlid"`
	Name     string `json:"name"`
	ActionID int64  `json:"action_id,omitempty"`
	Shortcut string `json:"shortcut,omitempty"`
	WebIcon  string `json:"web_icon,omitempty"`
	Children []Item `json:"children"`
}

// Tree returns the translated items of the menus of mc, children included
func (mc *Collection) Tree(lang string) []Item {
	mc.RLock()
	menus := append([]*Menu(nil), mc.Menus...)
	mc.RUnlock()
	res := make([]Item, 0, len(menus))
	for _, m := range menus {
		item := Item{
			ID:       m.ID,
			XMLID:    m.XMLID,
			Name:     m.TranslatedName(lang),
			WebIcon:  m.WebIcon,
			Children: []Item{},
		}
		if m.Action != nil {
			item.ActionID = m.Action.ID
		}
		if m.Shortcut != 0 {
			item.Shortcut = string(m.Shortcut)
		}
		if m.Children != nil {
			item.Children = m.Children.Tree(lang)
		}
		res = append(res, item)
	}
	return res
}

// Declare adds the given menu to the menus to load at bootstrap
func Declare(m *Menu) {
	bootstrapMap[m.XMLID] = m
}

// declareDashboardMenus declares the menu of the dashboard and its
// navigation entries
func declareDashboardMenus() {
	Declare(&Menu{
		XMLID:    "kulturhaus_dashboard_menu_root",
		NameKey:  "dashboard.title",
		ActionID: actions.DashboardAction,
		Sequence: 1,
		WebIcon:  "fa-tachometer",
	})
	Declare(&Menu{
		XMLID:    "kulturhaus_dashboard_menu_members",
		ParentID: "kulturhaus_dashboard_menu_root",
		ActionID: actions.MembersAction,
		Shortcut: 'm',
		Sequence: 10,
		WebIcon:  "fa-users",
	})
	Declare(&Menu{
		XMLID:    "kulturhaus_dashboard_menu_sepa",
		ParentID: "kulturhaus_dashboard_menu_root",
		ActionID: actions.SepaBatchesAction,
		Shortcut: 's',
		Sequence: 20,
		WebIcon:  "fa-university",
	})
	Declare(&Menu{
		XMLID:    "kulturhaus_dashboard_menu_events",
		ParentID: "kulturhaus_dashboard_menu_root",
		ActionID: actions.EventsAction,
		Shortcut: 'e',
		Sequence: 30,
		WebIcon:  "fa-calendar",
	})
}
