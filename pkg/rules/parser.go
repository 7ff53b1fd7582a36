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
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// 📝 ParseContent splits rule file text into pattern entries.
// Blank lines and lines starting with # are dropped but still advance the line counter.
func ParseContent(content string, sourceFile string) []PatternEntry {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var patterns []PatternEntry
	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, PatternEntry{
			Text:       line,
			LineNumber: i + 1,
			SourceFile: sourceFile,
		})
	}
	return patterns
}

// 📖 ParseFile reads and parses the rule file at path.
// It returns nil when the name is not a rule file name or the file cannot be read.
func ParseFile(ctx context.Context, path string) *RuleFileRecord {
	kind, ok := KindFromFileName(filepath.Base(path))
	if !ok {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("path", path).Msg("skipping unreadable rule file")
		return nil
	}

	return &RuleFileRecord{
		Path:     path,
		Kind:     kind,
		Patterns: ParseContent(string(data), path),
	}
}

// 📂 FindRuleFiles returns the rule files directly inside dir, ordered by lower-cased name.
// Zero records is the common case; two records means the directory is a conflict.
func FindRuleFiles(ctx context.Context, dir string) []RuleFileRecord {
	entries, err := os.ReadDir(dir)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("dir", dir).Msg("skipping unreadable directory")
		return nil
	}

	var records []RuleFileRecord
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := KindFromFileName(entry.Name()); !ok {
			continue
		}
		if rec := ParseFile(ctx, filepath.Join(dir, entry.Name())); rec != nil {
			records = append(records, *rec)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return strings.ToLower(filepath.Base(records[i].Path)) < strings.ToLower(filepath.Base(records[j].Path))
	})

	for i := 1; i < len(records); i++ {
		if records[i].Kind == records[i-1].Kind {
			zerolog.Ctx(ctx).Warn().
				Str("first", records[i-1].Path).
				Str("second", records[i].Path).
				Msg("rule file names differ only in case, merging their patterns")
		}
	}
	return records
}
