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
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/smartcopy/cmd/smartcopy/opts"
	"github.com/walteh/smartcopy/pkg/scanner"
	"github.com/walteh/smartcopy/pkg/status"
	"gitlab.com/tozd/go/errors"
)

func NewTreeCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		depth    int
		rootOnly bool
	)

	cmd := &cobra.Command{
		Use:   "tree <source> [dir]",
		Short: "Show which entries would be copied",
		Long: `Tree scans the source and lists entries with their decision, expanding
directories lazily down to --depth levels below the starting directory.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "tree").Logger().WithContext(cmd.Context())

			resp, err := scan(ctx, opts, args[0], "", rootOnly)
			if err != nil {
				return err
			}

			sess, err := opts.Service.Session(resp.SessionID)
			if err != nil {
				return errors.Errorf("loading session: %w", err)
			}

			start := sess.SourceRoot
			if len(args) == 2 {
				start = resolveUnder(sess.SourceRoot, args[1])
			}

			out := cmd.OutOrStdout()
			if start == sess.SourceRoot {
				fmt.Fprintln(out, status.FormatTreeLine(resp.Root, 0))
			}
			return printTree(ctx, out, opts.Service, resp.SessionID, start, 1, depth)
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 2, "number of directory levels to expand")
	cmd.Flags().BoolVar(&rootOnly, "root-only", false, "only read rule files at the source root")

	return cmd
}

func printTree(ctx context.Context, out io.Writer, svc *scanner.Service, id, dir string, level, maxDepth int) error {
	if level > maxDepth {
		return nil
	}

	children, err := svc.ListChildren(ctx, id, dir)
	if err != nil {
		return errors.Errorf("listing %s: %w", dir, err)
	}

	for _, child := range children {
		fmt.Fprintln(out, status.FormatTreeLine(child, level))
		if child.IsDir {
			if err := printTree(ctx, out, svc, id, child.Path, level+1, maxDepth); err != nil {
				return err
			}
		}
	}
	return nil
}
