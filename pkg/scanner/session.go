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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/walteh/smartcopy/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// 📊 Stats are the counters collected by a scan
type Stats struct {
	DirectoriesScanned int `json:"directories_scanned"`
	RuleFilesFound     int `json:"rule_files_found"`
	ConflictsFound     int `json:"conflicts_found"`
}

// 📦 Session is the server-side state of one scan. Its indexes are read-only after Scan
// returns; only the context cache grows.
type Session struct {
	ID         string
	SourceRoot string
	DestRoot   string
	RootOnly   bool
	Conflicts  []string
	RuleFiles  map[string][]rules.RuleFileRecord
	Stats      Stats
	CreatedAt  time.Time

	conflicts rules.ConflictSet
	contexts  *contextCache
}

func newSession(id, source, dest string, rootOnly bool) *Session {
	return &Session{
		ID:         id,
		SourceRoot: source,
		DestRoot:   dest,
		RootOnly:   rootOnly,
		RuleFiles:  make(map[string][]rules.RuleFileRecord),
		CreatedAt:  time.Now(),
		conflicts:  rules.NewConflictSet(nil),
		contexts:   newContextCache(),
	}
}

// ConflictSet returns the session's conflict directories indexed for lookup
func (s *Session) ConflictSet() rules.ConflictSet {
	return s.conflicts
}

// HasConflicts reports whether any directory holds both rule file kinds
func (s *Session) HasConflicts() bool {
	return len(s.Conflicts) > 0
}

// HasRuleFiles reports whether the scan indexed rule files directly inside dir
func (s *Session) HasRuleFiles(dir string) bool {
	return len(s.RuleFiles[filepath.Clean(dir)]) > 0
}

// Rel returns p relative to the source root and whether p lies at or beneath it.
// The root itself yields ".".
func (s *Session) Rel(p string) (string, bool) {
	rel, err := filepath.Rel(s.SourceRoot, filepath.Clean(p))
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// RootContext returns the context in effect at the source root
func (s *Session) RootContext() rules.RuleContext {
	return s.contexts.loadOrDerive(s.SourceRoot, func() rules.RuleContext {
		return rules.DeriveChildContext(rules.RootContext(), s.RuleFiles[s.SourceRoot])
	})
}

// ChildContext returns the context of dir given its parent's context, caching the result
func (s *Session) ChildContext(dir string, parent rules.RuleContext) rules.RuleContext {
	dir = filepath.Clean(dir)
	return s.contexts.loadOrDerive(dir, func() rules.RuleContext {
		return rules.DeriveChildContext(parent, s.RuleFiles[dir])
	})
}

// 🧭 ContextFor resolves the context of dir, walking down from the source root one segment at
// a time and caching every intermediate directory along the way.
func (s *Session) ContextFor(dir string) (rules.RuleContext, error) {
	dir = filepath.Clean(dir)
	if c, ok := s.contexts.load(dir); ok {
		return c.Clone(), nil
	}

	rel, ok := s.Rel(dir)
	if !ok {
		return rules.RuleContext{}, errors.Errorf("resolving context for %s: %w", dir, ErrContextNotFound)
	}

	current := s.SourceRoot
	ctx := s.RootContext()
	if rel == "." {
		return ctx, nil
	}

	for _, seg := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, seg)
		ctx = s.ChildContext(current, ctx)
	}
	return ctx, nil
}

// hasSubdirectories reports whether dir holds at least one directory, reading the listing in
// small batches so large directories stop early.
func hasSubdirectories(dir string) bool {
	f, err := os.Open(dir)
	if err != nil {
		return false
	}
	defer f.Close()

	for {
		entries, err := f.ReadDir(64)
		for _, e := range entries {
			if e.IsDir() {
				return true
			}
		}
		if err != nil {
			return false
		}
	}
}
