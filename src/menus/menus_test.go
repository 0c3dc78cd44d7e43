// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package menus

import (
	"testing"

	"github.com/kulturhaus/kulturhaus/src/actions"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMenus(t *testing.T) {
	Convey("Testing the dashboard menus", t, func() {
		BootStrap()
		root := Registry.GetByXMLID("kulturhaus_dashboard_menu_root")
		So(root, ShouldNotBeNil)
		Convey("Children are linked and sorted by sequence", func() {
			So(Registry.Menus, ShouldHaveLength, 1)
			So(root.HasChildren, ShouldBeTrue)
			So(root.Children.Menus, ShouldHaveLength, 3)
			So(root.Children.Menus[0].XMLID, ShouldEqual, "kulturhaus_dashboard_menu_members")
			So(root.Children.Menus[2].XMLID, ShouldEqual, "kulturhaus_dashboard_menu_events")
			So(Registry.All(), ShouldHaveLength, 4)
			So(Registry.GetByID(root.ID), ShouldEqual, root)
		})
		Convey("Menus are bound to their actions", func() {
			So(root.Action.Type, ShouldEqual, actions.ActionClient)
			So(root.Action.Tag, ShouldEqual, "kulturhaus_dashboard")
			So(Registry.GetByShortcut('s').Action.XMLID, ShouldEqual, actions.SepaBatchesAction)
			So(Registry.GetByShortcut('x'), ShouldBeNil)
		})
		Convey("Names are translated", func() {
			So(root.TranslatedName("de"), ShouldEqual, "Kulturhaus Dashboard")
			So(Registry.GetByShortcut('m').TranslatedName("de"), ShouldEqual, "Mitglieder")
			So(Registry.GetByShortcut('m').TranslatedName("en"), ShouldEqual, "Members")
		})
		Convey("The tree is the client view of the menus", func() {
			tree := Registry.Tree("de")
			So(tree, ShouldHaveLength, 1)
			So(tree[0].Name, ShouldEqual, "Kulturhaus Dashboard")
			So(tree[0].ActionID, ShouldEqual, actions.Registry.MustGetByXMLID(actions.DashboardAction).ID)
			So(tree[0].Children, ShouldHaveLength, 3)
			So(tree[0].Children[1].Name, ShouldEqual, "SEPA-Sammler")
			So(tree[0].Children[1].Shortcut, ShouldEqual, "s")
			So(tree[0].Children[1].Children, ShouldBeEmpty)
		})
		Convey("Bootstrapping twice gives the same menus", func() {
			BootStrap()
			So(Registry.All(), ShouldHaveLength, 4)
			So(Registry.GetByXMLID("kulturhaus_dashboard_menu_root").Children.Menus, ShouldHaveLength, 3)
		})
		Convey("Unknown parents panic", func() {
			Declare(&Menu{XMLID: "orphan", ParentID: "nope"})
			defer delete(bootstrapMap, "orphan")
			So(BootStrap, ShouldPanic)
		})
	})
}
