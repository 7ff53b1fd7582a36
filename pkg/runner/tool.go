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
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/smartcopy/pkg/plan"
	"github.com/walteh/smartcopy/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrPlanInvalid       = errors.Base("plan is invalid")
	ErrJobFailed         = errors.Base("job failed")
	ErrCancelled         = errors.Base("copy cancelled")
	ErrDestinationLocked = errors.Base("destination is locked by another copy")
	ErrUnknownTool       = errors.Base("unknown copy tool")
)

// Tool names understood by NewTool
const (
	ToolRobocopy = "robocopy"
	ToolRsync    = "rsync"
)

// 🚀 Invocation is one external process to start
type Invocation struct {
	Name  string
	Args  []string
	Stdin string
}

// String renders the invocation as a command line for logs
func (i Invocation) String() string {
	return strings.Join(append([]string{i.Name}, i.Args...), " ")
}

// 🛠️ Tool translates jobs into invocations of a bulk copy program and interprets its exit codes
type Tool interface {
	Name() string
	Invocations(ctx context.Context, job plan.Job, dryRun bool) ([]Invocation, error)
	Succeeded(exitCode int) bool
}

// ⚙️ Options tune the copy tool
type Options struct {
	Path        string // executable, defaults to the tool name
	Threads     int
	Retries     int
	WaitSeconds int
}

// DefaultOptions mirror the usual robocopy settings
func DefaultOptions() Options {
	return Options{Threads: 8, Retries: 3, WaitSeconds: 2}
}

// DefaultToolName picks robocopy on Windows and rsync elsewhere
func DefaultToolName() string {
	if runtime.GOOS == "windows" {
		return ToolRobocopy
	}
	return ToolRsync
}

// NewTool returns the tool registered under name
func NewTool(name string, opts Options) (Tool, error) {
	switch strings.ToLower(name) {
	case ToolRobocopy:
		return &Robocopy{opts: opts}, nil
	case ToolRsync:
		return &Rsync{opts: opts}, nil
	default:
		return nil, errors.Errorf("creating tool %q: %w", name, ErrUnknownTool)
	}
}

func executable(opts Options, name string) string {
	if opts.Path != "" {
		return opts.Path
	}
	return name
}

// 🔍 SelectedFiles lists the files a whitelist job copies, depth-first in directory order.
// Nested boundaries are skipped since other jobs own them.
func SelectedFiles(ctx context.Context, job plan.Job) ([]string, error) {
	var files []string
	err := walkJob(ctx, job, func(path string, d os.DirEntry) (bool, error) {
		if d.IsDir() {
			return true, nil
		}
		if rules.MatchPatterns(job.Patterns, path, false).Matched {
			files = append(files, path)
		}
		return true, nil
	})
	if err != nil {
		return nil, errors.Errorf("selecting files for %s: %w", job.SrcRoot, err)
	}
	return files, nil
}

// walkJob visits every entry below the job root except nested boundaries. Returning false for
// a directory skips its contents. Unreadable directories are skipped.
func walkJob(ctx context.Context, job plan.Job, fn func(path string, d os.DirEntry) (bool, error)) error {
	skip := make(map[string]struct{}, len(job.NestedBoundaries))
	for _, b := range job.NestedBoundaries {
		skip[filepath.Clean(b)] = struct{}{}
	}

	var walk func(dir string) error
	walk = func(dir string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("dir", dir).Msg("skipping unreadable directory")
			return nil
		}
		for _, e := range entries {
			p := filepath.Join(dir, e.Name())
			if e.IsDir() {
				if _, ok := skip[p]; ok {
					continue
				}
			}
			descend, err := fn(p, e)
			if err != nil {
				return err
			}
			if e.IsDir() && descend {
				if err := walk(p); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(job.SrcRoot)
}
