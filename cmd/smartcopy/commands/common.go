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
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/walteh/smartcopy/cmd/smartcopy/opts"
	"github.com/walteh/smartcopy/pkg/scanner"
	"gitlab.com/tozd/go/errors"
)

// scan runs a scan with the configured root-only default and reports it to the user
func scan(ctx context.Context, o *opts.RootOpts, source, dest string, rootOnly bool) (*scanner.Response, error) {
	resp, err := o.Scanner.Scan(ctx, scanner.Request{
		Source:   source,
		Dest:     dest,
		RootOnly: rootOnly || o.Settings.RootOnly,
	})
	if err != nil {
		return nil, errors.Errorf("scanning %s: %w", source, err)
	}
	o.UserLogger.LogScan(resp)
	return resp, nil
}

// resolveUnder turns a path given relative to the source root into an absolute one
func resolveUnder(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Errorf("encoding json: %w", err)
	}
	return nil
}
