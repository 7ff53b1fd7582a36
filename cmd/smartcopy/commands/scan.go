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
	"github.com/walteh/smartcopy/pkg/status"
)

func NewScanCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		dest     string
		rootOnly bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "scan <source>",
		Short: "Index the rule files under a source tree",
		Long: `Scan walks the source tree and indexes every .copyignore and .copyinclude file.
It will:
1. Report directories holding both rule files as conflicts
2. Count scanned directories and rule files
3. Print the decision for the source root`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "scan").Logger().WithContext(cmd.Context())

			resp, err := scan(ctx, opts, args[0], dest, rootOnly)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			fmt.Fprintln(cmd.OutOrStdout(), status.NewDefaultFormatter().FormatNode(resp.Root))
			return nil
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "", "destination root recorded with the session")
	cmd.Flags().BoolVar(&rootOnly, "root-only", false, "only read rule files at the source root")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the scan result as json")

	return cmd
}
