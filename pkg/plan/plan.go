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

package plan

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/smartcopy/pkg/rules"
	"github.com/walteh/smartcopy/pkg/scanner"
	"gitlab.com/tozd/go/errors"
)

// 📦 Job is one contiguous subtree copied by a single tool invocation (or, in whitelist mode,
// one invocation per directory holding selected files)
type Job struct {
	ID              string               `json:"id"`
	SrcRoot         string               `json:"src_root"`
	DstRoot         string               `json:"dst_root"`
	Mode            rules.Mode           `json:"mode"`
	Patterns        []rules.PatternEntry `json:"patterns"`
	OriginRuleFiles []string             `json:"origin_rule_files"`
	// NestedBoundaries are directories below SrcRoot whose rule files change matching. They are
	// planned separately (or, for a whitelist with no matches, not at all), so the tool must
	// leave them out of this job.
	NestedBoundaries []string `json:"nested_boundaries,omitempty"`
}

// 📋 Plan is the ordered list of jobs for a session. Jobs run in slice order.
type Plan struct {
	ID         string   `json:"id"`
	SourceRoot string   `json:"source_root"`
	DestRoot   string   `json:"dest_root"`
	Jobs       []Job    `json:"jobs"`
	TotalJobs  int      `json:"total_jobs"`
	Valid      bool     `json:"valid"`
	Conflicts  []string `json:"conflicts"`
}

// Sessions looks up scan sessions by id
type Sessions interface {
	Get(id string) (*scanner.Session, error)
}

// 🏗️ Builder partitions a scanned tree into copy jobs
type Builder struct {
	sessions Sessions
}

// NewBuilder creates a builder reading sessions from sessions
func NewBuilder(sessions Sessions) *Builder {
	return &Builder{sessions: sessions}
}

// 🏗️ Build walks the session's tree depth-first and emits a job at every boundary: the root,
// and, unless rootOnly, each directory whose rule files change how the files below it match.
// Every boundary is listed in the NestedBoundaries of the nearest job above it. A session with
// conflicts yields an invalid plan with no jobs.
func (b *Builder) Build(ctx context.Context, id string, rootOnly bool) (*Plan, error) {
	logger := zerolog.Ctx(ctx)

	sess, err := b.sessions.Get(id)
	if err != nil {
		return nil, errors.Errorf("building plan: %w", err)
	}

	p := &Plan{
		ID:         sess.ID,
		SourceRoot: sess.SourceRoot,
		DestRoot:   sess.DestRoot,
		Jobs:       []Job{},
		Conflicts:  sess.Conflicts,
	}

	if sess.HasConflicts() {
		logger.Warn().Int("conflicts", len(sess.Conflicts)).Msg("plan blocked by conflicting rule files")
		return p, nil
	}

	w := &walker{sess: sess, rootOnly: rootOnly}
	if err := w.walk(ctx, sess.SourceRoot, rules.RootContext(), -1); err != nil {
		return nil, errors.Errorf("building plan: %w", err)
	}

	p.Jobs = w.jobs
	p.TotalJobs = len(w.jobs)
	p.Valid = true

	logger.Info().Str("session", sess.ID).Int("jobs", p.TotalJobs).Msg("plan built")

	return p, nil
}

type walker struct {
	sess     *scanner.Session
	rootOnly bool
	jobs     []Job
}

// walk visits dir in pre-order. owner is the index of the nearest emitted job above dir, or -1.
func (w *walker) walk(ctx context.Context, dir string, parent rules.RuleContext, owner int) error {
	if err := ctx.Err(); err != nil {
		return errors.Errorf("walking %s: %w", dir, err)
	}

	isRoot := dir == w.sess.SourceRoot

	var dirCtx rules.RuleContext
	if isRoot {
		dirCtx = w.sess.RootContext()
	} else {
		dirCtx = w.sess.ChildContext(dir, parent)
	}

	if isRoot || w.isBoundary(dir, parent, dirCtx) {
		if owner >= 0 {
			w.jobs[owner].NestedBoundaries = append(w.jobs[owner].NestedBoundaries, dir)
		}

		if dirCtx.Mode != rules.ModeWhitelist || w.hasMatchingFile(ctx, dir, dirCtx) {
			w.jobs = append(w.jobs, w.newJob(dir, dirCtx))
			owner = len(w.jobs) - 1
		}

		if isRoot && w.rootOnly {
			return nil
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
		if err := w.walk(ctx, filepath.Join(dir, e.Name()), dirCtx, owner); err != nil {
			return err
		}
	}
	return nil
}

// isBoundary reports whether dir roots its own job: it hosts rule files and they change the
// mode or the pattern list inherited from parent
func (w *walker) isBoundary(dir string, parent, c rules.RuleContext) bool {
	return !w.rootOnly && w.sess.HasRuleFiles(dir) && !sameMatching(parent, c)
}

func sameMatching(a, b rules.RuleContext) bool {
	if a.Mode != b.Mode || len(a.Patterns) != len(b.Patterns) {
		return false
	}
	for i := range a.Patterns {
		if a.Patterns[i].Text != b.Patterns[i].Text || a.Patterns[i].SourceFile != b.Patterns[i].SourceFile {
			return false
		}
	}
	return true
}

func (w *walker) newJob(dir string, c rules.RuleContext) Job {
	dst := w.sess.DestRoot
	if rel, ok := w.sess.Rel(dir); ok && rel != "." {
		dst = filepath.Join(w.sess.DestRoot, rel)
	}

	return Job{
		ID:              uuid.NewString(),
		SrcRoot:         dir,
		DstRoot:         dst,
		Mode:            c.Mode,
		Patterns:        append([]rules.PatternEntry(nil), c.Patterns...),
		OriginRuleFiles: append([]string(nil), c.Chain...),
	}
}

// hasMatchingFile reports whether any file below dir matches the context's patterns, stopping
// at the first hit. Subtrees rooted at nested boundaries belong to other jobs and are skipped.
func (w *walker) hasMatchingFile(ctx context.Context, dir string, c rules.RuleContext) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("dir", dir).Msg("skipping unreadable directory")
		return false
	}

	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if w.isBoundary(p, c, w.sess.ChildContext(p, c)) {
				continue
			}
			if w.hasMatchingFile(ctx, p, c) {
				return true
			}
			continue
		}
		if rules.MatchPatterns(c.Patterns, p, false).Matched {
			return true
		}
	}
	return false
}
