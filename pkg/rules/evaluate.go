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

import "path/filepath"

// ConflictSet answers whether a directory was flagged as a conflict.
// Lookups ignore case and separator style like every other comparison here.
type ConflictSet map[string]struct{}

// NewConflictSet indexes the given conflict directories
func NewConflictSet(dirs []string) ConflictSet {
	set := make(ConflictSet, len(dirs))
	for _, d := range dirs {
		set[normalize(filepath.Clean(d))] = struct{}{}
	}
	return set
}

// Contains reports whether dir is a conflict directory
func (s ConflictSet) Contains(dir string) bool {
	_, ok := s[normalize(filepath.Clean(dir))]
	return ok
}

// ⚖️ Evaluate decides a node's state under ctx.
// The tree preview, explanations and job planning all go through here.
func Evaluate(nodePath string, isDir bool, ctx RuleContext, conflicts ConflictSet) (NodeState, MatchResult) {
	if isDir && conflicts.Contains(nodePath) {
		return StateConflict, MatchResult{}
	}

	switch ctx.Mode {
	case ModeNone:
		return StateIncluded, MatchResult{}
	case ModeBlacklist:
		res := MatchPatterns(ctx.Patterns, nodePath, isDir)
		if res.Matched {
			return StateExcluded, res
		}
		return StateIncluded, res
	case ModeWhitelist:
		res := MatchPatterns(ctx.Patterns, nodePath, isDir)
		if res.Matched {
			return StateIncluded, res
		}
		return StateExcluded, res
	default:
		return StateUnknown, MatchResult{}
	}
}
