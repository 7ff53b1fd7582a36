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

package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/walteh/smartcopy/pkg/plan"
	"github.com/walteh/smartcopy/pkg/rules"
)

// 🪟 Robocopy drives robocopy.exe
type Robocopy struct {
	opts Options
}

// NewRobocopy creates a robocopy tool
func NewRobocopy(opts Options) *Robocopy {
	return &Robocopy{opts: opts}
}

func (r *Robocopy) Name() string { return ToolRobocopy }

// Succeeded reports success for exit codes below 8; lower bits only describe what was copied
func (r *Robocopy) Succeeded(exitCode int) bool {
	return exitCode >= 0 && exitCode < 8
}

// Invocations translates the job. Blacklist patterns become /XD and /XF lists; a whitelist job
// becomes one invocation per directory naming its selected files.
func (r *Robocopy) Invocations(ctx context.Context, job plan.Job, dryRun bool) ([]Invocation, error) {
	name := executable(r.opts, "robocopy")

	if job.Mode == rules.ModeWhitelist {
		files, err := SelectedFiles(ctx, job)
		if err != nil {
			return nil, err
		}

		var out []Invocation
		for _, group := range groupByDir(files) {
			args := []string{group.dir, destFor(job, group.dir)}
			args = append(args, group.names...)
			args = append(args, r.common(dryRun)...)
			out = append(out, Invocation{Name: name, Args: args})
		}
		return out, nil
	}

	args := []string{job.SrcRoot, job.DstRoot, "/E"}

	var dirs, files []string
	dirs = append(dirs, job.NestedBoundaries...)
	if job.Mode == rules.ModeBlacklist {
		for _, p := range job.Patterns {
			switch rules.Classify(p.Text) {
			case rules.PatternDirName:
				dirs = append(dirs, rules.DirName(p.Text))
			case rules.PatternGlob:
				files = append(files, p.Text)
			default:
				full := filepath.Join(filepath.Dir(p.SourceFile), filepath.FromSlash(p.Text))
				if info, err := os.Stat(full); err == nil && info.IsDir() {
					dirs = append(dirs, full)
				} else {
					files = append(files, full)
				}
			}
		}
	}

	if len(dirs) > 0 {
		args = append(args, "/XD")
		args = append(args, dirs...)
	}
	if len(files) > 0 {
		args = append(args, "/XF")
		args = append(args, files...)
	}
	args = append(args, r.common(dryRun)...)

	return []Invocation{{Name: name, Args: args}}, nil
}

func (r *Robocopy) common(dryRun bool) []string {
	args := []string{
		fmt.Sprintf("/R:%d", r.opts.Retries),
		fmt.Sprintf("/W:%d", r.opts.WaitSeconds),
		fmt.Sprintf("/MT:%d", r.opts.Threads),
		"/NP", "/NDL", "/NS", "/NC", "/BYTES", "/TS",
	}
	if dryRun {
		args = append(args, "/L")
	}
	return args
}

type dirGroup struct {
	dir   string
	names []string
}

// groupByDir groups files by parent directory, keeping first-seen order
func groupByDir(files []string) []dirGroup {
	var groups []dirGroup
	index := map[string]int{}
	for _, f := range files {
		dir := filepath.Dir(f)
		i, ok := index[dir]
		if !ok {
			i = len(groups)
			index[dir] = i
			groups = append(groups, dirGroup{dir: dir})
		}
		groups[i].names = append(groups[i].names, filepath.Base(f))
	}
	return groups
}

// destFor maps a directory under the job's source root to the destination
func destFor(job plan.Job, dir string) string {
	rel, err := filepath.Rel(job.SrcRoot, dir)
	if err != nil || rel == "." {
		return job.DstRoot
	}
	return filepath.Join(job.DstRoot, rel)
}
