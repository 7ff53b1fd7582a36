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

package commands

import (
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/smartcopy/cmd/smartcopy/opts"
	"github.com/walteh/smartcopy/pkg/log"
	"github.com/walteh/smartcopy/pkg/runner"
	"gitlab.com/tozd/go/errors"
)

func NewCopyCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		rootOnly  bool
		dryRun    bool
		toolName  string
		killDelay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "copy <source> <dest>",
		Short: "Copy the source tree with robocopy or rsync",
		Long: `Copy scans the source, builds the plan and runs one copy tool invocation per
job, in order. It will:
1. Refuse to run when the tree has conflicts
2. Lock the destination against concurrent copies
3. Stop at the first job the tool reports as failed
4. Kill the running tool on interrupt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "copy").Logger().WithContext(cmd.Context())
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			name := toolName
			if name == "" {
				name = opts.Settings.Tool
			}
			tool, err := runner.NewTool(name, opts.Settings.RunnerOptions())
			if err != nil {
				return errors.Errorf("selecting copy tool: %w", err)
			}

			resp, err := scan(ctx, opts, args[0], args[1], rootOnly)
			if err != nil {
				return err
			}

			p, err := opts.Plans.Build(ctx, resp.SessionID, rootOnly || opts.Settings.RootOnly)
			if err != nil {
				return errors.Errorf("building plan: %w", err)
			}
			if !p.Valid {
				printPlan(cmd.OutOrStdout(), p)
			}

			console := log.New(cmd.OutOrStdout(), zerolog.InfoLevel).WithZerolog(*zerolog.Ctx(ctx))
			console.Header("copying " + p.SourceRoot + " with " + tool.Name())

			if !dryRun {
				opts.UserLogger.LogLockOperation(runner.LockPath(opts.Settings.LockDir, p.DestRoot))
			}

			executor := runner.NewExecutor(tool, console, runner.ExecutorOptions{
				LockDir:   opts.Settings.LockDir,
				KillDelay: killDelay,
			})
			if err := executor.Run(ctx, p, dryRun); err != nil {
				return errors.Errorf("copying %s: %w", p.SourceRoot, err)
			}

			opts.UserLogger.LogValidation(true, "Copy finished", nil)
			return nil
		},
	}

	cmd.Flags().BoolVar(&rootOnly, "root-only", false, "copy using only the root rule files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "ask the tool to list what it would copy")
	cmd.Flags().StringVar(&toolName, "tool", "", "copy tool to run (robocopy or rsync)")
	cmd.Flags().DurationVar(&killDelay, "kill-delay", 2*time.Second, "grace period before a cancelled tool is killed")

	return cmd
}
