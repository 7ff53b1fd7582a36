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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/smartcopy/cmd/smartcopy/commands"
	"github.com/walteh/smartcopy/cmd/smartcopy/opts"
	"github.com/walteh/smartcopy/pkg/status"
)

func withCommands(rootCmd *cobra.Command, rootOpts *opts.RootOpts) *cobra.Command {
	rootCmd.AddCommand(
		commands.NewScanCmd(rootOpts),
		commands.NewTreeCmd(rootOpts),
		commands.NewExplainCmd(rootOpts),
		commands.NewPlanCmd(rootOpts),
		commands.NewDryRunCmd(rootOpts),
		commands.NewCopyCmd(rootOpts),
		newVersionCmd(),
	)
	return rootCmd
}

func main() {
	ctx := zerolog.New(os.Stderr).With().Timestamp().Logger().WithContext(context.Background())

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, status.NewDefaultFormatter().FormatError(err))
		os.Exit(1)
	}
}
