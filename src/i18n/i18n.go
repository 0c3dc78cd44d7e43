// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package i18n is the content layer of the application.
//
// Every user visible string is looked up by a named key in a
// per-language catalog. Catalogs are YAML documents mapping a
// language code to its keys:
//
//	de:
//	  time.just_now: "Gerade eben"
package i18n

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/kulturhaus/kulturhaus/src/tools/logging"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultLang is used when a key is missing in the requested language
const DefaultLang = "en"

//go:embed catalog.yaml
var builtinCatalog []byte

var log logging.Logger

// Registry holds all the translations of the application
var Registry *TranslationsCollection

// A TranslationsCollection holds content strings by language and key
type TranslationsCollection struct {
	sync.RWMutex
	content map[string]map[string]string
}

// NewTranslationsCollection returns a pointer to a new empty TranslationsCollection
func NewTranslationsCollection() *TranslationsCollection {
	return &TranslationsCollection{
		content: make(map[string]map[string]string),
	}
}

// Load merges the given YAML catalog into this collection.
// Keys already present are overridden.
func (tc *TranslationsCollection) Load(data []byte) error {
	var catalog map[string]map[string]string
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return errors.Wrap(err, "unable to parse content catalog")
	}
	tc.Lock()
	defer tc.Unlock()
	for lang, keys := range catalog {
		lang = normalizeLang(lang)
		if tc.content[lang] == nil {
			tc.content[lang] = make(map[string]string)
		}
		for key, value := range keys {
			tc.content[lang][key] = value
		}
	}
	return nil
}

// LoadFile merges the YAML catalog of the given file into this collection.
func (tc *TranslationsCollection) LoadFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to read content catalog %s", fileName)
	}
	return tc.Load(data)
}

// Translate returns the content for key in lang, formatted with args.
//
// If lang has no such key, DefaultLang is tried, then the key itself
// is returned so that missing content is visible but never empty.
func (tc *TranslationsCollection) Translate(lang, key string, args ...interface{}) string {
	tc.RLock()
	val, ok := tc.content[normalizeLang(lang)][key]
	if !ok || val == "" {
		val, ok = tc.content[DefaultLang][key]
	}
	tc.RUnlock()
	if !ok || val == "" {
		log.Debug("Missing content key", "lang", lang, "key", key)
		val = key
	}
	if len(args) == 0 {
		return val
	}
	return fmt.Sprintf(val, args...)
}

// Has returns true if key is defined for lang, without fallback.
func (tc *TranslationsCollection) Has(lang, key string) bool {
	tc.RLock()
	defer tc.RUnlock()
	_, ok := tc.content[normalizeLang(lang)][key]
	return ok
}

// hasLang returns true if the collection has content for lang
func (tc *TranslationsCollection) hasLang(lang string) bool {
	tc.RLock()
	defer tc.RUnlock()
	return len(tc.content[normalizeLang(lang)]) > 0
}

// Langs returns the sorted list of languages of this collection
func (tc *TranslationsCollection) Langs() []string {
	tc.RLock()
	defer tc.RUnlock()
	res := make([]string, 0, len(tc.content))
	for lang := range tc.content {
		res = append(res, lang)
	}
	sort.Strings(res)
	return res
}

// T is a shortcut for Registry.Translate
func T(lang, key string, args ...interface{}) string {
	return Registry.Translate(lang, key, args...)
}

// normalizeLang maps locale codes such as de_DE or de-DE to de
func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "_-"); i > 0 {
		lang = lang[:i]
	}
	if lang == "" {
		return DefaultLang
	}
	return lang
}

func init() {
	log = logging.GetLogger("i18n")
	Registry = NewTranslationsCollection()
	if err := Registry.Load(builtinCatalog); err != nil {
		log.Panic("Unable to load builtin content catalog", "error", err)
	}
}
