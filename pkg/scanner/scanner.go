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

package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/smartcopy/pkg/rules"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelThreshold is the number of root subdirectories below which the walk stays
// sequential
const DefaultParallelThreshold = 2

// ⚙️ Options tune the scan walk
type Options struct {
	// Workers bounds the goroutines walking root subtrees. Values <= 1 walk sequentially.
	Workers int
	// ParallelThreshold is the minimum number of root subdirectories worth fanning out for
	ParallelThreshold int
}

// DefaultOptions returns one worker per CPU
func DefaultOptions() Options {
	return Options{
		Workers:           runtime.NumCPU(),
		ParallelThreshold: DefaultParallelThreshold,
	}
}

// 📥 Request names the trees to scan
type Request struct {
	Source   string
	Dest     string
	RootOnly bool
}

// 📤 Response is the caller-facing subset of a new session
type Response struct {
	SessionID string         `json:"session_id"`
	Conflicts []string       `json:"conflicts"`
	Root      rules.TreeNode `json:"root"`
	Stats     Stats          `json:"stats"`
}

// 🔭 Scanner indexes rule files under a source root and registers the result as a session
type Scanner struct {
	store *Store
	opts  Options
}

// New creates a scanner storing its sessions in store
func New(store *Store, opts Options) *Scanner {
	if opts.ParallelThreshold <= 0 {
		opts.ParallelThreshold = DefaultParallelThreshold
	}
	return &Scanner{store: store, opts: opts}
}

// 🔭 Scan detects conflicts, indexes every rule file and stores a new session
func (s *Scanner) Scan(ctx context.Context, req Request) (*Response, error) {
	logger := zerolog.Ctx(ctx)

	source, err := filepath.Abs(req.Source)
	if err != nil {
		return nil, errors.Errorf("resolving source %q: %w", req.Source, err)
	}
	info, err := os.Stat(source)
	if err != nil {
		return nil, errors.Errorf("checking source %s (%v): %w", source, err, ErrInvalidSource)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("source %s is not a directory: %w", source, ErrInvalidSource)
	}

	dest := req.Dest
	if dest != "" {
		if dest, err = filepath.Abs(dest); err != nil {
			return nil, errors.Errorf("resolving destination %q: %w", req.Dest, err)
		}
	}

	conflicts, err := rules.DetectConflicts(ctx, source)
	if err != nil {
		return nil, errors.Errorf("scanning %s: %w", source, err)
	}

	idx, err := s.index(ctx, source, req.RootOnly)
	if err != nil {
		return nil, errors.Errorf("scanning %s: %w", source, err)
	}

	sess := newSession(uuid.NewString(), source, dest, req.RootOnly)
	sess.Conflicts = conflicts
	sess.conflicts = rules.NewConflictSet(conflicts)
	sess.RuleFiles = idx.ruleFiles
	sess.Stats = Stats{
		DirectoriesScanned: idx.dirs,
		RuleFilesFound:     idx.ruleFileCount,
		ConflictsFound:     len(conflicts),
	}

	rootCtx := sess.RootContext()
	root := rules.TreeNode{
		Path:        source,
		Name:        filepath.Base(source),
		IsDir:       true,
		State:       rules.StateIncluded,
		HasChildren: hasSubdirectories(source),
		ModeAtPath:  rootCtx.Mode,
	}

	s.store.Put(sess)

	logger.Info().
		Str("session", sess.ID).
		Str("source", source).
		Int("directories", sess.Stats.DirectoriesScanned).
		Int("rule_files", sess.Stats.RuleFilesFound).
		Int("conflicts", sess.Stats.ConflictsFound).
		Msg("scan complete")

	return &Response{
		SessionID: sess.ID,
		Conflicts: conflicts,
		Root:      root,
		Stats:     sess.Stats,
	}, nil
}

// index is the rule file index of one subtree plus its counters
type index struct {
	ruleFiles     map[string][]rules.RuleFileRecord
	dirs          int
	ruleFileCount int
}

func newIndex() *index {
	return &index{ruleFiles: make(map[string][]rules.RuleFileRecord)}
}

func (ix *index) merge(other *index) {
	for dir, records := range other.ruleFiles {
		ix.ruleFiles[dir] = records
	}
	ix.dirs += other.dirs
	ix.ruleFileCount += other.ruleFileCount
}

// index walks the tree below root. The root is indexed first, then its immediate
// subdirectories are walked either sequentially or by a bounded pool of workers, each filling
// its own index that is merged once all of them finish.
func (s *Scanner) index(ctx context.Context, root string, rootOnly bool) (*index, error) {
	logger := zerolog.Ctx(ctx)

	idx := newIndex()
	idx.dirs++
	if records := rules.FindRuleFiles(ctx, root); len(records) > 0 {
		idx.ruleFiles[root] = records
		idx.ruleFileCount += len(records)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		logger.Debug().Err(err).Str("dir", root).Msg("skipping unreadable directory")
		return idx, nil
	}

	var subdirs []string
	for _, e := range entries {
		if e.IsDir() {
			subdirs = append(subdirs, filepath.Join(root, e.Name()))
		}
	}

	if s.opts.Workers <= 1 || len(subdirs) < s.opts.ParallelThreshold {
		for _, dir := range subdirs {
			if err := walk(ctx, dir, rootOnly, idx); err != nil {
				return nil, err
			}
		}
		return idx, nil
	}

	logger.Debug().Int("subtrees", len(subdirs)).Int("workers", s.opts.Workers).Msg("walking subtrees in parallel")

	results := make([]*index, len(subdirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, dir := range subdirs {
		g.Go(func() error {
			local := newIndex()
			if err := walk(gctx, dir, rootOnly, local); err != nil {
				return err
			}
			results[i] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		idx.merge(r)
	}
	return idx, nil
}

// walk indexes dir and everything below it. Directories beneath the root are only searched for
// rule files when rootOnly is off, but they are always counted.
func walk(ctx context.Context, dir string, rootOnly bool, idx *index) error {
	if err := ctx.Err(); err != nil {
		return errors.Errorf("walking %s: %w", dir, err)
	}

	idx.dirs++
	if !rootOnly {
		if records := rules.FindRuleFiles(ctx, dir); len(records) > 0 {
			idx.ruleFiles[dir] = records
			idx.ruleFileCount += len(records)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("dir", dir).Msg("skipping unreadable directory")
		return nil
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := walk(ctx, filepath.Join(dir, e.Name()), rootOnly, idx); err != nil {
			return err
		}
	}
	return nil
}
