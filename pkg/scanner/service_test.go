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

package scanner_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/smartcopy/pkg/rules"
	"github.com/walteh/smartcopy/pkg/scanner"
)

func scanTree(t *testing.T, ctx context.Context, files map[string]string) (*scanner.Service, string, string) {
	t.Helper()
	root := buildTree(t, files)
	s, store := newScanner(1)
	resp, err := s.Scan(ctx, scanner.Request{Source: root, Dest: t.TempDir()})
	require.NoError(t, err)
	return scanner.NewService(store), resp.SessionID, root
}

func states(nodes []rules.TreeNode) map[string]rules.NodeState {
	out := make(map[string]rules.NodeState, len(nodes))
	for _, n := range nodes {
		out[n.Name] = n.State
	}
	return out
}

func TestListChildren(t *testing.T) {
	ctx := setupTestLogger(t)

	t.Run("blacklist_root", func(t *testing.T) {
		svc, id, root := scanTree(t, ctx, map[string]string{
			".copyignore":               "*.log\nnode_modules/",
			"file.txt":                  "x",
			"debug.log":                 "x",
			"node_modules/pkg/index.js": "x",
			"src/main.go":               "x",
		})

		children, err := svc.ListChildren(ctx, id, root)
		require.NoError(t, err)
		assert.Equal(t, map[string]rules.NodeState{
			".copyignore":  rules.StateIncluded,
			"debug.log":    rules.StateExcluded,
			"file.txt":     rules.StateIncluded,
			"node_modules": rules.StateExcluded,
			"src":          rules.StateIncluded,
		}, states(children))

		names := make([]string, 0, len(children))
		for _, c := range children {
			names = append(names, c.Name)
		}
		assert.Equal(t, []string{".copyignore", "debug.log", "file.txt", "node_modules", "src"}, names)

		nested, err := svc.ListChildren(ctx, id, filepath.Join(root, "node_modules", "pkg"))
		require.NoError(t, err)
		require.Len(t, nested, 1)
		assert.Equal(t, rules.StateExcluded, nested[0].State)
		assert.Equal(t, rules.ModeBlacklist, nested[0].ModeAtPath)
	})

	t.Run("has_children_probe", func(t *testing.T) {
		svc, id, root := scanTree(t, ctx, map[string]string{
			"leaf/file.txt":      "x",
			"branch/inner/a.txt": "x",
		})

		children, err := svc.ListChildren(ctx, id, root)
		require.NoError(t, err)
		require.Len(t, children, 2)
		assert.Equal(t, "branch", children[0].Name)
		assert.True(t, children[0].HasChildren)
		assert.Equal(t, "leaf", children[1].Name)
		assert.False(t, children[1].HasChildren)
	})

	t.Run("mode_reset_in_subdir", func(t *testing.T) {
		svc, id, root := scanTree(t, ctx, map[string]string{
			".copyignore":         "*.log",
			"subdir/.copyinclude": "*.txt",
			"subdir/a.txt":        "x",
			"subdir/a.log":        "x",
			"subdir/a.png":        "x",
		})

		children, err := svc.ListChildren(ctx, id, filepath.Join(root, "subdir"))
		require.NoError(t, err)
		got := states(children)
		assert.Equal(t, rules.StateIncluded, got["a.txt"])
		assert.Equal(t, rules.StateExcluded, got["a.log"])
		assert.Equal(t, rules.StateExcluded, got["a.png"])
	})

	t.Run("conflict_directory", func(t *testing.T) {
		svc, id, root := scanTree(t, ctx, map[string]string{
			"bad/.copyignore":  "*.log",
			"bad/.copyinclude": "*.txt",
		})

		children, err := svc.ListChildren(ctx, id, root)
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, rules.StateConflict, children[0].State)
	})

	t.Run("unknown_session", func(t *testing.T) {
		svc := scanner.NewService(scanner.NewStore(1))
		_, err := svc.ListChildren(ctx, "nope", t.TempDir())
		require.Error(t, err)
		assert.ErrorIs(t, err, scanner.ErrSessionNotFound)
	})

	t.Run("outside_root", func(t *testing.T) {
		svc, id, _ := scanTree(t, ctx, map[string]string{"a.txt": "x"})
		_, err := svc.ListChildren(ctx, id, t.TempDir())
		require.Error(t, err)
		assert.ErrorIs(t, err, scanner.ErrContextNotFound)
	})

	t.Run("unreadable_directory_lists_empty", func(t *testing.T) {
		svc, id, root := scanTree(t, ctx, map[string]string{"a.txt": "x"})
		children, err := svc.ListChildren(ctx, id, filepath.Join(root, "missing"))
		require.NoError(t, err)
		assert.Empty(t, children)
	})
}

func TestExplain(t *testing.T) {
	ctx := setupTestLogger(t)

	t.Run("reports_every_matching_pattern", func(t *testing.T) {
		svc, id, root := scanTree(t, ctx, map[string]string{
			".copyignore": "*.log\ndebug.log",
			"debug.log":   "x",
		})

		res, err := svc.Explain(ctx, id, filepath.Join(root, "debug.log"))
		require.NoError(t, err)
		assert.Equal(t, rules.StateExcluded, res.Decision)
		assert.Equal(t, rules.ModeBlacklist, res.Mode)
		assert.Equal(t, "debug.log", res.Name)
		assert.False(t, res.IsDir)
		assert.Equal(t, []string{filepath.Join(root, ".copyignore")}, res.RuleChain)
		require.Len(t, res.MatchingPatterns, 2)
		assert.Equal(t, "*.log", res.MatchingPatterns[0].Text)
		assert.Equal(t, 1, res.MatchingPatterns[0].LineNumber)
		assert.Equal(t, "debug.log", res.MatchingPatterns[1].Text)
		assert.Equal(t, 2, res.MatchingPatterns[1].LineNumber)
	})

	t.Run("stacked_chain", func(t *testing.T) {
		svc, id, root := scanTree(t, ctx, map[string]string{
			".copyignore":        "*.log",
			"subdir/.copyignore": "*.tmp",
			"subdir/x.tmp":       "x",
		})

		res, err := svc.Explain(ctx, id, filepath.Join(root, "subdir", "x.tmp"))
		require.NoError(t, err)
		assert.Equal(t, rules.StateExcluded, res.Decision)
		assert.Equal(t, []string{
			filepath.Join(root, ".copyignore"),
			filepath.Join(root, "subdir", ".copyignore"),
		}, res.RuleChain)
	})

	t.Run("root", func(t *testing.T) {
		svc, id, root := scanTree(t, ctx, map[string]string{".copyinclude": "*.txt"})

		res, err := svc.Explain(ctx, id, root)
		require.NoError(t, err)
		assert.Equal(t, rules.StateIncluded, res.Decision)
		assert.True(t, res.IsDir)
		assert.Equal(t, rules.ModeWhitelist, res.Mode)
	})

	t.Run("missing_path_with_trailing_separator_is_a_directory", func(t *testing.T) {
		svc, id, root := scanTree(t, ctx, map[string]string{".copyignore": "gone/"})

		res, err := svc.Explain(ctx, id, filepath.Join(root, "gone")+string(filepath.Separator))
		require.NoError(t, err)
		assert.True(t, res.IsDir)
		assert.Equal(t, rules.StateExcluded, res.Decision)
	})

	t.Run("outside_root", func(t *testing.T) {
		svc, id, _ := scanTree(t, ctx, map[string]string{"a.txt": "x"})
		_, err := svc.Explain(ctx, id, t.TempDir())
		require.Error(t, err)
		assert.ErrorIs(t, err, scanner.ErrContextNotFound)
	})

	t.Run("unknown_session", func(t *testing.T) {
		svc := scanner.NewService(scanner.NewStore(1))
		_, err := svc.Explain(ctx, "nope", t.TempDir())
		require.Error(t, err)
		assert.ErrorIs(t, err, scanner.ErrSessionNotFound)
	})
}

func TestExplainAgreesWithListChildren(t *testing.T) {
	ctx := setupTestLogger(t)

	svc, id, root := scanTree(t, ctx, map[string]string{
		".copyignore":             "*.log\nnode_modules/\nbuild/out.bin",
		"a.txt":                   "x",
		"a.log":                   "x",
		"node_modules/x/index.js": "x",
		"build/out.bin":           "x",
		"build/keep.bin":          "x",
		"web/.copyinclude":        "*.html\nassets/",
		"web/index.html":          "x",
		"web/style.css":           "x",
		"web/assets/logo.png":     "x",
		"web/deep/.copyinclude":   "*.css",
		"web/deep/theme.css":      "x",
		"web/deep/theme.html":     "x",
		"clash/.copyignore":       "*",
		"clash/.copyinclude":      "*",
		"clash/inner/file.txt":    "x",
		"docs/.copyignore":        "",
		"docs/readme.md":          "x",
		"docs/sub/.copyinclude":   "*.md",
		"docs/sub/guide.md":       "x",
		"docs/sub/guide.pdf":      "x",
	})

	visited := 0
	var visit func(dir string)
	visit = func(dir string) {
		children, err := svc.ListChildren(ctx, id, dir)
		require.NoError(t, err)
		for _, child := range children {
			res, err := svc.Explain(ctx, id, child.Path)
			require.NoError(t, err)
			assert.Equal(t, child.State, res.Decision, "state of %s", child.Path)
			assert.Equal(t, child.ModeAtPath, res.Mode, "mode of %s", child.Path)
			visited++
			if child.IsDir {
				visit(child.Path)
			}
		}
	}
	visit(root)

	assert.Equal(t, 31, visited)
}
