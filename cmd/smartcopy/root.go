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
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/smartcopy/cmd/smartcopy/opts"
	"github.com/walteh/smartcopy/cmd/smartcopy/ui"
	"github.com/walteh/smartcopy/pkg/config"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	debugMode  bool
	noColor    bool
)

func newRootOpts(ctx context.Context, out io.Writer) (*opts.RootOpts, error) {
	// Create user logger
	userLogger := ui.NewUserLogger(ctx, out)

	// Load settings
	settings, err := config.Resolve(ctx, configFile, "")
	if err != nil {
		return nil, errors.Errorf("loading settings: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("settings", settings.String()).Msg("settings loaded")

	return opts.New(settings, userLogger), nil
}

func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "settings file path (default .smartcopy.{yaml,yml,json,hcl})")
	cmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

func setupLogging(errOut io.Writer) zerolog.Logger {
	if debugMode {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	colors := !noColor && ui.IsTerminal(os.Stdout)
	ui.ConfigureOutput(colors, debugMode)

	return zerolog.New(zerolog.ConsoleWriter{Out: errOut, NoColor: !colors}).With().Timestamp().Logger()
}

// newRootCmd builds the command tree. The shared options are filled in before any
// subcommand runs, once flags are parsed.
func newRootCmd() *cobra.Command {
	rootOpts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "smartcopy",
		Short: "Copy large trees with rule files deciding what goes",
		Long: `smartcopy decides, for every file and directory under a source tree, whether it
belongs in a bulk copy. Directories opt in or out with .copyignore (blacklist) and
.copyinclude (whitelist) files, and the tree is split into jobs that robocopy or rsync
run one invocation at a time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(cmd.ErrOrStderr())
			ctx := logger.WithContext(cmd.Context())
			cmd.SetContext(ctx)

			built, err := newRootOpts(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			*rootOpts = *built
			return nil
		},
	}

	// Add shared flags
	addRootFlags(rootCmd)

	return withCommands(rootCmd, rootOpts)
}
