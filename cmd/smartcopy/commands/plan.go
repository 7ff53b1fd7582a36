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
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/smartcopy/cmd/smartcopy/opts"
	"github.com/walteh/smartcopy/pkg/plan"
	"github.com/walteh/smartcopy/pkg/runner"
	"gitlab.com/tozd/go/errors"
)

func NewPlanCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		rootOnly bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "plan <source> <dest>",
		Short: "Partition the source tree into copy jobs",
		Long: `Plan scans the source and lists the jobs a copy would run, in execution order.
Every directory holding a rule file roots its own job. A tree with conflicts has no
valid plan.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "plan").Logger().WithContext(cmd.Context())

			resp, err := scan(ctx, opts, args[0], args[1], rootOnly)
			if err != nil {
				return err
			}

			p, err := opts.Plans.Build(ctx, resp.SessionID, rootOnly || opts.Settings.RootOnly)
			if err != nil {
				return errors.Errorf("building plan: %w", err)
			}

			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), p); err != nil {
					return err
				}
			} else {
				printPlan(cmd.OutOrStdout(), p)
			}

			if !p.Valid {
				opts.UserLogger.LogValidation(false, fmt.Sprintf("Plan is invalid: %d conflict(s)", len(p.Conflicts)), nil)
				return runner.ErrPlanInvalid
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&rootOnly, "root-only", false, "plan only the root job")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as json")

	return cmd
}

func printPlan(out io.Writer, p *plan.Plan) {
	fmt.Fprintf(out, "📋 %s → %s: %d job(s)\n", p.SourceRoot, p.DestRoot, p.TotalJobs)
	for i, job := range p.Jobs {
		fmt.Fprintf(out, "%3d. %s → %s (%s, %d pattern(s))\n", i+1, job.SrcRoot, job.DstRoot, job.Mode, len(job.Patterns))
		for _, nested := range job.NestedBoundaries {
			fmt.Fprintf(out, "       skips %s\n", nested)
		}
	}
	for _, dir := range p.Conflicts {
		fmt.Fprintf(out, "⚠️  conflict: %s\n", dir)
	}
}
