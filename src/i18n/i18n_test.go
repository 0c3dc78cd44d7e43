// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package i18n

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestContentLayer(t *testing.T) {
	Convey("Testing the builtin catalog", t, func() {
		So(Registry.Langs(), ShouldResemble, []string{"de", "en"})
		So(T("de", "checkout.existing_account"), ShouldEqual, "Sie haben bereits einen Account?")
		So(T("en", "time.hours_ago", 5), ShouldEqual, "5 hours ago")
		So(T("de_DE", "time.days_ago", 2), ShouldEqual, "Vor 2 Tagen")
		So(T("de-DE", "time.yesterday"), ShouldEqual, "Gestern")
	})
	Convey("Every key of the default language exists in German", t, func() {
		Registry.RLock()
		keys := Registry.content[DefaultLang]
		Registry.RUnlock()
		for key := range keys {
			So(Registry.Has("de", key), ShouldBeTrue)
		}
	})
	Convey("Testing fallbacks", t, func() {
		tc := NewTranslationsCollection()
		So(tc.Load([]byte("en:\n  greeting: \"Hello %s\"\nfr:\n  other: \"Autre\"\n")), ShouldBeNil)
		Convey("Missing keys fall back to the default language", func() {
			So(tc.Translate("fr", "greeting", "Anna"), ShouldEqual, "Hello Anna")
		})
		Convey("Unknown keys return the key itself", func() {
			So(tc.Translate("fr", "missing.key"), ShouldEqual, "missing.key")
		})
		Convey("An empty language means the default language", func() {
			So(tc.Translate("", "greeting", "Ben"), ShouldEqual, "Hello Ben")
		})
	})
	Convey("Testing catalog overrides from a file", t, func() {
		tc := NewTranslationsCollection()
		So(tc.Load([]byte("de:\n  checkout.back_to_cart: \"zurück\"\n")), ShouldBeNil)
		dir, err := os.MkdirTemp("", "catalog")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)
		fileName := filepath.Join(dir, "override.yaml")
		So(os.WriteFile(fileName, []byte("de:\n  checkout.back_to_cart: \"Zurück zum Warenkorb\"\n"), 0644), ShouldBeNil)
		So(tc.LoadFile(fileName), ShouldBeNil)
		So(tc.Translate("de", "checkout.back_to_cart"), ShouldEqual, "Zurück zum Warenkorb")
		So(tc.LoadFile(filepath.Join(dir, "missing.yaml")), ShouldNotBeNil)
		So(tc.Load([]byte("not: [valid")), ShouldNotBeNil)
	})
}

func TestBootStrap(t *testing.T) {
	Convey("Testing the content languages", t, func() {
		defer viper.Set("Server.Languages", nil)
		Convey("Languages without content are dropped", func() {
			viper.Set("Server.Languages", []string{"de_DE", "fr", "de"})
			BootStrap()
			So(Langs, ShouldResemble, []string{"de"})
		})
		Convey("ALL loads every language of the catalog", func() {
			viper.Set("Server.Languages", []string{"all"})
			BootStrap()
			So(Langs, ShouldResemble, []string{"de", "en"})
		})
		Convey("The default language is used when none is set", func() {
			viper.Set("Server.Languages", []string{})
			BootStrap()
			So(Langs, ShouldResemble, []string{"en"})
		})
	})
}
