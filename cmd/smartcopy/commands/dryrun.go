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
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/smartcopy/cmd/smartcopy/opts"
	"github.com/walteh/smartcopy/pkg/runner"
	"gitlab.com/tozd/go/errors"
)

func NewDryRunCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		rootOnly bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "dry-run <source> <dest>",
		Short: "Estimate what a copy would transfer",
		Long: `Dry-run builds the plan and walks every job to count the files and bytes
it would copy. Nothing is written and no copy tool is started.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "dry-run").Logger().WithContext(cmd.Context())

			resp, err := scan(ctx, opts, args[0], args[1], rootOnly)
			if err != nil {
				return err
			}

			report, err := opts.Plans.DryRun(ctx, resp.SessionID, rootOnly || opts.Settings.RootOnly, runner.WalkEstimator{})
			if err != nil {
				return errors.Errorf("running dry run: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, report); err != nil {
					return err
				}
			} else {
				printPlan(out, report.Plan)
				if report.Valid {
					fmt.Fprintf(out, "🧪 would copy %d file(s), %d byte(s)\n", report.EstimatedFiles, report.EstimatedBytes)
				}
			}

			if !report.Valid {
				opts.UserLogger.LogValidation(false, fmt.Sprintf("Plan is invalid: %d conflict(s)", len(report.Conflicts)), nil)
				return runner.ErrPlanInvalid
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&rootOnly, "root-only", false, "plan only the root job")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as json")

	return cmd
}
