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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	blacklist := DeriveChildContext(RootContext(), []RuleFileRecord{record(KindBlacklist, "/p", "*.log", "node_modules/")})
	whitelist := DeriveChildContext(RootContext(), []RuleFileRecord{record(KindWhitelist, "/p", "*.txt")})
	conflicts := NewConflictSet([]string{"/p/bad"})

	tests := []struct {
		name  string
		path  string
		isDir bool
		ctx   RuleContext
		want  NodeState
	}{
		{name: "none_includes_everything", path: "/p/a.log", ctx: RootContext(), want: StateIncluded},
		{name: "blacklist_matched", path: "/p/debug.log", ctx: blacklist, want: StateExcluded},
		{name: "blacklist_unmatched", path: "/p/file.txt", ctx: blacklist, want: StateIncluded},
		{name: "blacklist_dir_name", path: "/p/node_modules", isDir: true, ctx: blacklist, want: StateExcluded},
		{name: "blacklist_file_in_dir_name", path: "/p/node_modules/x/y.js", ctx: blacklist, want: StateExcluded},
		{name: "whitelist_matched", path: "/p/file.txt", ctx: whitelist, want: StateIncluded},
		{name: "whitelist_unmatched", path: "/p/image.png", ctx: whitelist, want: StateExcluded},
		{name: "conflict_dir", path: "/p/bad", isDir: true, ctx: blacklist, want: StateConflict},
		{name: "conflict_dir_case_insensitive", path: "/P/Bad", isDir: true, ctx: blacklist, want: StateConflict},
		{name: "conflict_applies_to_dirs_only", path: "/p/bad", isDir: false, ctx: RootContext(), want: StateIncluded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Evaluate(tt.path, tt.isDir, tt.ctx, conflicts)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("returns_matching_patterns", func(t *testing.T) {
		_, res := Evaluate("/p/debug.log", false, blacklist, conflicts)
		assert.True(t, res.Matched)
		assert.Equal(t, []string{"*.log"}, texts(res.Matching))
	})
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "none", ModeNone.String())
	assert.Equal(t, "blacklist", ModeBlacklist.String())
	assert.Equal(t, "whitelist", ModeWhitelist.String())
	assert.Equal(t, "included", StateIncluded.String())
	assert.Equal(t, "excluded", StateExcluded.String())
	assert.Equal(t, "conflict", StateConflict.String())
	assert.Equal(t, "unknown", StateUnknown.String())
	assert.Equal(t, ModeBlacklist, KindBlacklist.Mode())
	assert.Equal(t, ModeWhitelist, KindWhitelist.Mode())
}

func TestEnumText(t *testing.T) {
	for _, m := range []Mode{ModeNone, ModeBlacklist, ModeWhitelist} {
		text, err := m.MarshalText()
		require.NoError(t, err)
		var got Mode
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, m, got)
	}

	for _, s := range []NodeState{StateUnknown, StateIncluded, StateExcluded, StateConflict} {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var got NodeState
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, s, got)
	}

	var m Mode
	assert.Error(t, m.UnmarshalText([]byte("greylist")))
	var s NodeState
	assert.Error(t, s.UnmarshalText([]byte("maybe")))
}
