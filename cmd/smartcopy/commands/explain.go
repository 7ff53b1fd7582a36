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
	"github.com/walteh/smartcopy/pkg/scanner"
	"github.com/walteh/smartcopy/pkg/status"
	"gitlab.com/tozd/go/errors"
)

func NewExplainCmd(opts *opts.RootOpts) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "explain <source> <path>...",
		Short: "Explain why paths are included or excluded",
		Long: `Explain reports, for each path, the decision, the mode in effect, the chain
of rule files that produced it and the patterns that matched. Paths may be absolute or
relative to the source root.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "explain").Logger().WithContext(cmd.Context())

			resp, err := scan(ctx, opts, args[0], "", false)
			if err != nil {
				return err
			}

			sess, err := opts.Service.Session(resp.SessionID)
			if err != nil {
				return errors.Errorf("loading session: %w", err)
			}

			out := cmd.OutOrStdout()
			formatter := status.NewDefaultFormatter()
			results := make([]*scanner.ExplainResult, 0, len(args)-1)
			failed := 0
			for _, p := range args[1:] {
				res, err := opts.Service.Explain(ctx, resp.SessionID, resolveUnder(sess.SourceRoot, p))
				if err != nil {
					failed++
					fmt.Fprintln(out, formatter.FormatError(err))
					continue
				}
				if asJSON {
					results = append(results, res)
					continue
				}
				for _, line := range status.FormatExplain(res) {
					fmt.Fprintln(out, line)
				}
			}

			if asJSON {
				if err := writeJSON(out, results); err != nil {
					return err
				}
			}
			if failed > 0 {
				return errors.Errorf("explaining %d of %d path(s) failed", failed, len(args)-1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the results as json")

	return cmd
}
