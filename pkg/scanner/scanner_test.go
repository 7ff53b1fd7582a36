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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/smartcopy/pkg/rules"
	"github.com/walteh/smartcopy/pkg/scanner"
)

func setupTestLogger(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// buildTree lays out files under a fresh temp dir. Keys ending in "/" create empty directories.
func buildTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			require.NoError(t, os.MkdirAll(p, 0o755), "creating %s", name)
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755), "creating parent of %s", name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644), "writing %s", name)
	}
	return root
}

func newScanner(workers int) (*scanner.Scanner, *scanner.Store) {
	store := scanner.NewStore(0)
	return scanner.New(store, scanner.Options{Workers: workers, ParallelThreshold: 2}), store
}

func TestScan(t *testing.T) {
	ctx := setupTestLogger(t)

	t.Run("counts_directories_and_rule_files", func(t *testing.T) {
		root := buildTree(t, map[string]string{
			".copyignore":        "*.log",
			"file.txt":           "x",
			"sub/.copyignore":    "*.tmp",
			"sub/deep/a.txt":     "x",
			"other/.copyinclude": "*.md",
		})
		s, store := newScanner(1)

		resp, err := s.Scan(ctx, scanner.Request{Source: root, Dest: filepath.Join(root, "..", "dst")})
		require.NoError(t, err)
		assert.Equal(t, scanner.Stats{DirectoriesScanned: 4, RuleFilesFound: 3, ConflictsFound: 0}, resp.Stats)
		assert.Empty(t, resp.Conflicts)
		assert.NotEmpty(t, resp.SessionID)

		assert.Equal(t, root, resp.Root.Path)
		assert.Equal(t, filepath.Base(root), resp.Root.Name)
		assert.True(t, resp.Root.IsDir)
		assert.True(t, resp.Root.HasChildren)
		assert.Equal(t, rules.StateIncluded, resp.Root.State)
		assert.Equal(t, rules.ModeBlacklist, resp.Root.ModeAtPath)

		sess, err := store.Get(resp.SessionID)
		require.NoError(t, err)
		assert.True(t, sess.HasRuleFiles(root))
		assert.True(t, sess.HasRuleFiles(filepath.Join(root, "sub")))
		assert.False(t, sess.HasRuleFiles(filepath.Join(root, "sub", "deep")))
		assert.True(t, filepath.IsAbs(sess.DestRoot))
	})

	t.Run("conflict_directory_reported", func(t *testing.T) {
		root := buildTree(t, map[string]string{
			"bad/.copyignore":  "*.log",
			"bad/.copyinclude": "*.txt",
			"good/file.txt":    "x",
		})
		s, _ := newScanner(1)

		resp, err := s.Scan(ctx, scanner.Request{Source: root})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Stats.ConflictsFound)
		assert.Equal(t, []string{filepath.Join(root, "bad")}, resp.Conflicts)
		assert.Equal(t, rules.StateIncluded, resp.Root.State, "root is always included")
	})

	t.Run("root_only_indexes_root_alone", func(t *testing.T) {
		root := buildTree(t, map[string]string{
			".copyignore":     "*.log",
			"sub/.copyignore": "*.tmp",
		})
		s, store := newScanner(1)

		resp, err := s.Scan(ctx, scanner.Request{Source: root, RootOnly: true})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Stats.DirectoriesScanned)
		assert.Equal(t, 1, resp.Stats.RuleFilesFound)

		sess, err := store.Get(resp.SessionID)
		require.NoError(t, err)
		assert.True(t, sess.RootOnly)
		assert.False(t, sess.HasRuleFiles(filepath.Join(root, "sub")))
	})

	t.Run("empty_root", func(t *testing.T) {
		root := t.TempDir()
		s, _ := newScanner(1)

		resp, err := s.Scan(ctx, scanner.Request{Source: root})
		require.NoError(t, err)
		assert.False(t, resp.Root.HasChildren)
		assert.Equal(t, rules.ModeNone, resp.Root.ModeAtPath)
		assert.Equal(t, 1, resp.Stats.DirectoriesScanned)
	})

	t.Run("missing_source", func(t *testing.T) {
		s, _ := newScanner(1)
		_, err := s.Scan(ctx, scanner.Request{Source: filepath.Join(t.TempDir(), "missing")})
		require.Error(t, err)
		assert.ErrorIs(t, err, scanner.ErrInvalidSource)
	})

	t.Run("source_is_a_file", func(t *testing.T) {
		root := buildTree(t, map[string]string{"file.txt": "x"})
		s, _ := newScanner(1)
		_, err := s.Scan(ctx, scanner.Request{Source: filepath.Join(root, "file.txt")})
		require.Error(t, err)
		assert.ErrorIs(t, err, scanner.ErrInvalidSource)
	})

	t.Run("cancelled_context", func(t *testing.T) {
		root := buildTree(t, map[string]string{"a/b/c.txt": "x"})
		s, _ := newScanner(1)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := s.Scan(cctx, scanner.Request{Source: root})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestScanParallelMatchesSequential(t *testing.T) {
	ctx := setupTestLogger(t)

	files := map[string]string{
		".copyignore": "*.log",
		"empty/":      "",
	}
	for _, d := range []string{"a", "b", "c", "d", "e", "f"} {
		files[d+"/file.txt"] = "x"
		files[d+"/nested/deeper/file.txt"] = "x"
	}
	files["b/.copyinclude"] = "*.txt"
	files["d/nested/.copyignore"] = "*.tmp"
	files["f/nested/deeper/.copyignore"] = "*.bak"
	root := buildTree(t, files)

	seq, seqStore := newScanner(1)
	par, parStore := newScanner(4)

	seqResp, err := seq.Scan(ctx, scanner.Request{Source: root})
	require.NoError(t, err)
	parResp, err := par.Scan(ctx, scanner.Request{Source: root})
	require.NoError(t, err)

	assert.Equal(t, seqResp.Stats, parResp.Stats)
	assert.Equal(t, seqResp.Root, parResp.Root)
	assert.Equal(t, 20, parResp.Stats.DirectoriesScanned)
	assert.Equal(t, 4, parResp.Stats.RuleFilesFound)

	seqSess, err := seqStore.Get(seqResp.SessionID)
	require.NoError(t, err)
	parSess, err := parStore.Get(parResp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, seqSess.RuleFiles, parSess.RuleFiles)
}
