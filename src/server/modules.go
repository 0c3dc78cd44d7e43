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

package server

import (
	"path/filepath"
	"sort"

	"github.com/kulturhaus/kulturhaus/src/i18n"
	"github.com/spf13/viper"
)

// A Module is a go package that implements business features.
// This struct is used to register modules.
type Module struct {
	Name     string
	PreInit  func()
	PostInit func()
}

// A ModulesList is a list of Module objects
type ModulesList []*Module

// Names returns a list of all module names in this ModuleList.
func (ml *ModulesList) Names() []string {
	res := make([]string, len(*ml))
	for i, module := range *ml {
		res[i] = module.Name
	}
	return res
}

// Modules is the list of activated modules in the application
var Modules ModulesList

// RegisterModule registers the given module in the server
// This function should be called in the init() function of
// all Kulturhaus addons.
func RegisterModule(mod *Module) {
	for _, m := range Modules {
		if m.Name == mod.Name {
			log.Panic("Module already registered", "module", mod.Name)
		}
	}
	Modules = append(Modules, mod)
}

// PreInit runs all actions that need to be done after we get the configuration,
// but before the routes are created.
//
// This function runs successively all PreInit() func of modules
func PreInit() {
	for _, module := range Modules {
		if module.PreInit != nil {
			module.PreInit()
		}
	}
}

// PostInit runs all actions that need to be done after all modules have been loaded.
// This function:
// - loads the content overrides found in the i18n directory,
// - runs successively all PostInit() func of all modules.
func PostInit() {
	LoadContentOverrides(filepath.Join(viper.GetString("DataDir"), "i18n"))
	for _, module := range Modules {
		if module.PostInit != nil {
			module.PostInit()
		}
	}
}

// LoadContentOverrides loads all YAML content files of dir on top of the
// embedded catalog. Missing directories are ignored.
func LoadContentOverrides(dir string) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		log.Warn("Unable to list content files", "dir", dir, "error", err)
		return
	}
	sort.Strings(files)
	for _, file := range files {
		if err := i18n.Registry.LoadFile(file); err != nil {
			log.Panic("Unable to load content file", "file", file, "error", err)
		}
		log.Info("Loaded content file", "file", file)
	}
}
