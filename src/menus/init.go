// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package menus holds the navigation menu of the dashboard.
//
// Menus are declared in init functions, then linked to their parent
// and to their action by BootStrap.
package menus

import (
	"sort"

	"github.com/kulturhaus/kulturhaus/src/actions"
	"github.com/kulturhaus/kulturhaus/src/tools/logging"
)

var log logging.Logger

// BootStrap the menus by linking parents and children
// and populates the Registry. It can be called several times.
func BootStrap() {
	Registry = NewCollection()
	// Parents must be added before their children
	var ordered []*Menu
	for _, menu := range bootstrapMap {
		ordered = append(ordered, menu)
	}
	sort.Slice(ordered, func(i, j int) bool {
		di, dj := depth(ordered[i]), depth(ordered[j])
		if di != dj {
			return di < dj
		}
		return ordered[i].XMLID < ordered[j].XMLID
	})
	for _, menu := range ordered {
		menu.Parent, menu.Children, menu.HasChildren = nil, nil, false
		if menu.ParentID != "" {
			parentMenu := bootstrapMap[menu.ParentID]
			if parentMenu == nil {
				log.Panic("Unknown parent menu ID", "parentID", menu.ParentID)
			}
			menu.Parent = parentMenu
		}
		if menu.ActionID != "" {
			menu.Action = actions.Registry.MustGetByXMLID(menu.ActionID)
		}
		Registry.Add(menu)
	}
}

// depth returns the number of ancestors of the given declared menu
func depth(m *Menu) int {
	var res int
	for id := m.ParentID; id != "" && res <= len(bootstrapMap); res++ {
		parent := bootstrapMap[id]
		if parent == nil {
			break
		}
		id = parent.ParentID
	}
	return res
}

func init() {
	Registry = NewCollection()
	bootstrapMap = make(map[string]*Menu)
	log = logging.GetLogger("menus")
	declareDashboardMenus()
}
