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
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// 🏷️ PatternKind is the matching strategy of a pattern
type PatternKind int

const (
	PatternDirName  PatternKind = iota // "node_modules/"
	PatternGlob                        // "*.log"
	PatternRelative                    // "src/main.ts", "README.md"
)

// String returns a string representation of PatternKind
func (k PatternKind) String() string {
	switch k {
	case PatternDirName:
		return "directory-name"
	case PatternGlob:
		return "glob"
	default:
		return "relative-path"
	}
}

// Classify decides how a pattern is matched. The first rule that applies wins.
func Classify(pattern string) PatternKind {
	if strings.HasSuffix(pattern, "/") || strings.HasSuffix(pattern, `\`) {
		return PatternDirName
	}
	if strings.HasPrefix(pattern, "*") || strings.HasPrefix(pattern, "?") {
		return PatternGlob
	}
	hasSep := strings.ContainsAny(pattern, `/\`)
	if !hasSep && hasWildcard(pattern) {
		return PatternGlob
	}
	return PatternRelative
}

// DirName returns the bare directory name of a directory-name pattern
func DirName(pattern string) string {
	return strings.TrimRight(pattern, `/\`)
}

func hasWildcard(s string) bool {
	return strings.ContainsAny(s, "*?")
}

// normalize folds separators to "/" and case to lower so comparisons are case-insensitive
func normalize(p string) string {
	p = strings.ToLower(strings.ReplaceAll(p, `\`, "/"))
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

// relativeTo returns candidate relative to dir, both normalized, and whether candidate is at or
// beneath dir. Comparison is per segment so "/a/bc" is not beneath "/a/b".
func relativeTo(candidate, dir string) (string, bool) {
	if candidate == dir {
		return "", true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if !strings.HasPrefix(candidate, prefix) {
		return "", false
	}
	return strings.TrimPrefix(candidate, prefix), true
}

// 🎯 MatchPattern reports whether one pattern, declared in a rule file living in ruleDir,
// matches the candidate path.
func MatchPattern(pattern, candidate string, isDir bool, ruleDir string) bool {
	target := normalize(candidate)
	dir := normalize(ruleDir)

	switch Classify(pattern) {
	case PatternDirName:
		name := strings.ToLower(DirName(pattern))
		rel, ok := relativeTo(target, dir)
		if !ok || name == "" {
			return false
		}
		if isDir {
			return path.Base(target) == name
		}
		// a file matches when it sits somewhere inside a directory of that name
		segments := strings.Split(rel, "/")
		for _, seg := range segments[:len(segments)-1] {
			if seg == name {
				return true
			}
		}
		return false

	case PatternGlob:
		ok, err := doublestar.Match(strings.ToLower(pattern), path.Base(target))
		return err == nil && ok

	default:
		pat := strings.ToLower(strings.ReplaceAll(pattern, `\`, "/"))
		rel, ok := relativeTo(target, dir)
		if !ok || rel == "" {
			return false
		}
		expected := path.Clean(strings.TrimPrefix(pat, "/"))
		if hasWildcard(pat) {
			matched, err := doublestar.Match(expected, rel)
			return err == nil && matched
		}
		return rel == expected || strings.HasPrefix(rel, expected+"/")
	}
}

// RuleDir returns the directory holding the pattern's rule file, separator-normalized
func RuleDir(p PatternEntry) string {
	return path.Dir(normalize(p.SourceFile))
}

// 🔍 MatchPatterns evaluates every pattern against the candidate and returns all that matched.
// Each pattern resolves relative paths against the directory of its own rule file.
func MatchPatterns(patterns []PatternEntry, candidate string, isDir bool) MatchResult {
	var res MatchResult
	for _, p := range patterns {
		if MatchPattern(p.Text, candidate, isDir, RuleDir(p)) {
			res.Matching = append(res.Matching, p)
		}
	}
	res.Matched = len(res.Matching) > 0
	return res
}
