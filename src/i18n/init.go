// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package i18n

import (
	"strings"

	"github.com/spf13/viper"
)

// Langs is the list of all the content languages of the application
var Langs []string

// BootStrap initializes the available languages from the Server.Languages
// setting. "ALL" stands for every language of the catalog. Languages
// without content are dropped.
func BootStrap() {
	Langs = Langs[:0]
	seen := make(map[string]bool)
	add := func(lang string) {
		lang = normalizeLang(lang)
		if seen[lang] {
			return
		}
		seen[lang] = true
		Langs = append(Langs, lang)
	}
	for _, lang := range viper.GetStringSlice("Server.Languages") {
		if strings.ToUpper(lang) == "ALL" {
			for _, l := range Registry.Langs() {
				add(l)
			}
			continue
		}
		if !Registry.hasLang(lang) {
			log.Warn("No content for language, ignoring", "lang", lang)
			continue
		}
		add(lang)
	}
	if len(Langs) == 0 {
		Langs = []string{DefaultLang}
	}
}
