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

// 🧬 DeriveChildContext computes a directory's context from its parent's context and the rule
// files found directly inside it.
//
// Entering the same mode stacks (parent patterns first, then the child's); entering a different
// mode, or any mode from None, resets to the child's patterns alone. The kind of the first record
// drives traversal; with two kinds (a conflict) records of the other kind are ignored and callers
// flag the conflict separately. Several records of the same kind, as case-sensitive filesystems
// allow, are merged in order.
//
// The result never shares backing arrays with parent, so it is safe to memoize per directory.
func DeriveChildContext(parent RuleContext, ruleFiles []RuleFileRecord) RuleContext {
	if len(ruleFiles) == 0 {
		return parent.Clone()
	}

	kind := ruleFiles[0].Kind
	mode := kind.Mode()

	var own []PatternEntry
	var paths []string
	for _, rf := range ruleFiles {
		if rf.Kind != kind {
			continue
		}
		own = append(own, rf.Patterns...)
		paths = append(paths, rf.Path)
	}

	if parent.Mode == mode {
		patterns := make([]PatternEntry, 0, len(parent.Patterns)+len(own))
		patterns = append(patterns, parent.Patterns...)
		patterns = append(patterns, own...)

		chain := make([]string, 0, len(parent.Chain)+len(paths))
		chain = append(chain, parent.Chain...)
		chain = append(chain, paths...)

		return RuleContext{Mode: mode, Patterns: patterns, Chain: chain}
	}

	return RuleContext{
		Mode:     mode,
		Patterns: append([]PatternEntry(nil), own...),
		Chain:    paths,
	}
}
