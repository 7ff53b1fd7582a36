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
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/smartcopy/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// 💡 ExplainResult says why a node has the state it has
type ExplainResult struct {
	Path             string               `json:"path"`
	Name             string               `json:"name"`
	IsDir            bool                 `json:"is_dir"`
	Decision         rules.NodeState      `json:"decision"`
	Mode             rules.Mode           `json:"mode"`
	RuleChain        []string             `json:"rule_chain"`
	MatchingPatterns []rules.PatternEntry `json:"matching_patterns"`
}

// 🌲 Service answers lazy tree queries against stored sessions
type Service struct {
	store *Store
}

// NewService creates a query service over store
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Session returns the stored session with the given id
func (s *Service) Session(id string) (*Session, error) {
	return s.store.Get(id)
}

// 📂 ListChildren evaluates the immediate entries of dir. Directories are judged under their
// own context, files under dir's. An unreadable dir lists as empty.
func (s *Service) ListChildren(ctx context.Context, id, dir string) ([]rules.TreeNode, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, errors.Errorf("resolving %s: %w", dir, err)
	}

	dirCtx, err := sess.ContextFor(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("dir", dir).Msg("skipping unreadable directory")
		return []rules.TreeNode{}, nil
	}

	children := make([]rules.TreeNode, 0, len(entries))
	for _, e := range entries {
		childPath := filepath.Join(dir, e.Name())
		node := rules.TreeNode{
			Path:  childPath,
			Name:  e.Name(),
			IsDir: e.IsDir(),
		}

		if node.IsDir {
			childCtx := sess.ChildContext(childPath, dirCtx)
			node.State, _ = rules.Evaluate(childPath, true, childCtx, sess.ConflictSet())
			node.ModeAtPath = childCtx.Mode
			node.HasChildren = hasSubdirectories(childPath)
		} else {
			node.State, _ = rules.Evaluate(childPath, false, dirCtx, sess.ConflictSet())
			node.ModeAtPath = dirCtx.Mode
		}

		children = append(children, node)
	}
	return children, nil
}

// 💡 Explain returns the decision for one node together with the rule files and every pattern
// behind it. It always agrees with ListChildren on the node's state.
func (s *Service) Explain(ctx context.Context, id, nodePath string) (*ExplainResult, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(nodePath)
	if err != nil {
		return nil, errors.Errorf("resolving %s: %w", nodePath, err)
	}

	rel, ok := sess.Rel(abs)
	if !ok {
		return nil, errors.Errorf("explaining %s: %w", abs, ErrContextNotFound)
	}

	if rel == "." {
		rootCtx := sess.RootContext()
		return &ExplainResult{
			Path:      sess.SourceRoot,
			Name:      filepath.Base(sess.SourceRoot),
			IsDir:     true,
			Decision:  rules.StateIncluded,
			Mode:      rootCtx.Mode,
			RuleChain: rootCtx.Chain,
		}, nil
	}

	isDir := strings.HasSuffix(nodePath, "/") || strings.HasSuffix(nodePath, string(filepath.Separator))
	if info, err := os.Lstat(abs); err == nil {
		isDir = info.IsDir()
	} else {
		zerolog.Ctx(ctx).Debug().Err(err).Str("path", abs).Msg("explaining unreadable path structurally")
	}

	parentCtx, err := sess.ContextFor(filepath.Dir(abs))
	if err != nil {
		return nil, err
	}

	evalCtx := parentCtx
	if isDir {
		evalCtx = sess.ChildContext(abs, parentCtx)
	}

	decision, match := rules.Evaluate(abs, isDir, evalCtx, sess.ConflictSet())

	return &ExplainResult{
		Path:             abs,
		Name:             filepath.Base(abs),
		IsDir:            isDir,
		Decision:         decision,
		Mode:             evalCtx.Mode,
		RuleChain:        evalCtx.Chain,
		MatchingPatterns: match.Matching,
	}, nil
}
