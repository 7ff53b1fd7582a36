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

package rules

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ⚔️ HasConflict reports whether a directory listing holds both rule file kinds
func HasConflict(entries []os.DirEntry) bool {
	var ignore, include bool
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch kind, _ := KindFromFileName(e.Name()); kind {
		case KindBlacklist:
			ignore = true
		case KindWhitelist:
			include = true
		}
	}
	return ignore && include
}

// 🔎 DetectConflicts walks the whole tree under root depth-first and returns every directory
// holding both rule file kinds. Unreadable directories are skipped.
func DetectConflicts(ctx context.Context, root string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	var conflicts []string
	var walk func(dir string) error
	walk = func(dir string) error {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("detecting conflicts: %w", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Debug().Err(err).Str("dir", dir).Msg("skipping unreadable directory")
			return nil
		}

		if HasConflict(entries) {
			conflicts = append(conflicts, dir)
		}

		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if err := walk(filepath.Join(dir, e.Name())); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	return conflicts, nil
}
