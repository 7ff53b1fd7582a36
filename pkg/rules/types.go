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
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 📛 Recognized rule file names, matched case-insensitively
const (
	IgnoreFileName  = ".copyignore"
	IncludeFileName = ".copyinclude"
)

// 📄 Kind is the flavor of a rule file
type Kind int

const (
	KindBlacklist Kind = iota + 1 // .copyignore
	KindWhitelist                 // .copyinclude
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindBlacklist:
		return "blacklist"
	case KindWhitelist:
		return "whitelist"
	default:
		return "unknown"
	}
}

// Mode returns the filtering mode a rule file of this kind switches to
func (k Kind) Mode() Mode {
	switch k {
	case KindBlacklist:
		return ModeBlacklist
	case KindWhitelist:
		return ModeWhitelist
	default:
		return ModeNone
	}
}

// 🎚️ Mode is the active filtering mode at a directory
type Mode int

const (
	ModeNone      Mode = iota // no rule file between the root and here
	ModeBlacklist             // matched entries are excluded
	ModeWhitelist             // only matched entries are included
)

// String returns a string representation of Mode
func (m Mode) String() string {
	switch m {
	case ModeBlacklist:
		return "blacklist"
	case ModeWhitelist:
		return "whitelist"
	default:
		return "none"
	}
}

// MarshalText renders the mode by name for JSON output
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "none", "":
		*m = ModeNone
	case "blacklist":
		*m = ModeBlacklist
	case "whitelist":
		*m = ModeWhitelist
	default:
		return errors.Errorf("unknown mode %q", text)
	}
	return nil
}

// 🚦 NodeState is the decided state of a node
type NodeState int

const (
	StateUnknown NodeState = iota
	StateIncluded
	StateExcluded
	StateConflict
)

// String returns a string representation of NodeState
func (s NodeState) String() string {
	switch s {
	case StateIncluded:
		return "included"
	case StateExcluded:
		return "excluded"
	case StateConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name for JSON output
func (s NodeState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *NodeState) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "included":
		*s = StateIncluded
	case "excluded":
		*s = StateExcluded
	case "conflict":
		*s = StateConflict
	case "unknown", "":
		*s = StateUnknown
	default:
		return errors.Errorf("unknown node state %q", text)
	}
	return nil
}

// 📝 PatternEntry is one pattern line from a rule file
type PatternEntry struct {
	Text       string `json:"text"`        // raw pattern text, trimmed
	LineNumber int    `json:"line_number"` // 1-based line in the rule file
	SourceFile string `json:"source_file"` // absolute path of the rule file
}

// 📚 RuleFileRecord is one parsed rule file
type RuleFileRecord struct {
	Path     string         `json:"path"`
	Kind     Kind           `json:"kind"`
	Patterns []PatternEntry `json:"patterns"`
}

// 🧭 RuleContext is the effective filtering state at a directory after stacking or reset.
// Chain lists the contributing rule files in inheritance order and only serves explanations.
type RuleContext struct {
	Mode     Mode
	Patterns []PatternEntry
	Chain    []string
}

// RootContext returns the context above the source root: no mode, nothing active.
func RootContext() RuleContext {
	return RuleContext{Mode: ModeNone}
}

// Clone returns a copy that shares no backing arrays with c
func (c RuleContext) Clone() RuleContext {
	return RuleContext{
		Mode:     c.Mode,
		Patterns: append([]PatternEntry(nil), c.Patterns...),
		Chain:    append([]string(nil), c.Chain...),
	}
}

// Equal reports whether two contexts carry the same mode, patterns and chain
func (c RuleContext) Equal(o RuleContext) bool {
	if c.Mode != o.Mode || len(c.Patterns) != len(o.Patterns) || len(c.Chain) != len(o.Chain) {
		return false
	}
	for i := range c.Patterns {
		if c.Patterns[i] != o.Patterns[i] {
			return false
		}
	}
	for i := range c.Chain {
		if c.Chain[i] != o.Chain[i] {
			return false
		}
	}
	return true
}

// 🌳 TreeNode is a lazily materialized view of one entry under the source root
type TreeNode struct {
	Path        string    `json:"path"`
	Name        string    `json:"name"`
	IsDir       bool      `json:"is_dir"`
	State       NodeState `json:"state"`
	HasChildren bool      `json:"has_children"`
	ModeAtPath  Mode      `json:"mode_at_path"`
}

// 🔍 MatchResult carries every pattern that matched a candidate
type MatchResult struct {
	Matched  bool
	Matching []PatternEntry
}

// KindFromFileName returns the rule file kind for a bare file name, or false if the name is
// not a rule file name.
func KindFromFileName(name string) (Kind, bool) {
	switch strings.ToLower(name) {
	case IgnoreFileName:
		return KindBlacklist, true
	case IncludeFileName:
		return KindWhitelist, true
	default:
		return 0, false
	}
}
