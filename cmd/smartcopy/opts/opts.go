// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package opts

import (
	"github.com/walteh/smartcopy/cmd/smartcopy/ui"
	"github.com/walteh/smartcopy/pkg/config"
	"github.com/walteh/smartcopy/pkg/plan"
	"github.com/walteh/smartcopy/pkg/scanner"
)

type RootOpts struct {
	Settings   *config.Settings
	Store      *scanner.Store
	Scanner    *scanner.Scanner
	Service    *scanner.Service
	Plans      *plan.Builder
	UserLogger *ui.UserLogger
}

// New wires the in-process scanner, tree service and plan builder from settings
func New(settings *config.Settings, userLogger *ui.UserLogger) *RootOpts {
	store := scanner.NewStore(settings.MaxSessions)
	return &RootOpts{
		Settings: settings,
		Store:    store,
		Scanner: scanner.New(store, scanner.Options{
			Workers:           settings.ScannerThreads,
			ParallelThreshold: settings.ParallelThreshold,
		}),
		Service:    scanner.NewService(store),
		Plans:      plan.NewBuilder(store),
		UserLogger: userLogger,
	}
}
