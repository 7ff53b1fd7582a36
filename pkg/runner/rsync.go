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
	"path/filepath"
	"strings"
	"unicode"

	"github.com/walteh/smartcopy/pkg/plan"
	"github.com/walteh/smartcopy/pkg/rules"
)

// 🐧 Rsync drives rsync
type Rsync struct {
	opts Options
}

// NewRsync creates an rsync tool
func NewRsync(opts Options) *Rsync {
	return &Rsync{opts: opts}
}

func (r *Rsync) Name() string { return ToolRsync }

// Succeeded accepts 0 and 24 (source files vanished mid-transfer)
func (r *Rsync) Succeeded(exitCode int) bool {
	return exitCode == 0 || exitCode == 24
}

// Invocations translates the job into a single rsync run. Blacklist patterns become --exclude
// rules anchored at the job root; a whitelist job feeds its selected files on stdin.
func (r *Rsync) Invocations(ctx context.Context, job plan.Job, dryRun bool) ([]Invocation, error) {
	args := []string{"-a"}
	if dryRun {
		args = append(args, "--dry-run")
	}

	inv := Invocation{Name: executable(r.opts, "rsync")}

	switch job.Mode {
	case rules.ModeWhitelist:
		files, err := SelectedFiles(ctx, job)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, nil
		}
		var sb strings.Builder
		for _, f := range files {
			rel, err := filepath.Rel(job.SrcRoot, f)
			if err != nil {
				continue
			}
			sb.WriteString(filepath.ToSlash(rel))
			sb.WriteByte('\n')
		}
		args = append(args, "--files-from=-")
		inv.Stdin = sb.String()

	default:
		for _, b := range job.NestedBoundaries {
			if rel, ok := anchored(job.SrcRoot, b); ok {
				args = append(args, "--exclude", rel+"/")
			}
		}
		if job.Mode == rules.ModeBlacklist {
			for _, p := range job.Patterns {
				if ex, ok := rsyncExclude(job.SrcRoot, p); ok {
					args = append(args, "--exclude", ex)
				}
			}
		}
	}

	args = append(args, withSlash(job.SrcRoot), withSlash(job.DstRoot))
	inv.Args = args
	return []Invocation{inv}, nil
}

// rsyncExclude converts a pattern into an rsync exclude rule relative to the transfer root.
// Relative patterns from rule files above the job root are re-anchored, or dropped when they
// point outside it. Rules are case-folded since rsync itself matches case-sensitively.
func rsyncExclude(srcRoot string, p rules.PatternEntry) (string, bool) {
	switch rules.Classify(p.Text) {
	case rules.PatternDirName:
		return foldCase(rules.DirName(p.Text)) + "/", true
	case rules.PatternGlob:
		return foldCase(p.Text), true
	default:
		full := filepath.Join(filepath.Dir(p.SourceFile), filepath.FromSlash(strings.ReplaceAll(p.Text, `\`, "/")))
		rel, ok := anchored(srcRoot, full)
		if !ok {
			return "", false
		}
		return "/" + foldCase(strings.TrimPrefix(rel, "/")), true
	}
}

// foldCase spells each letter as a two-case bracket class (`*.LOG` becomes `*.[lL][oO][gG]`).
// Existing bracket classes get the upper-case copy of their body appended.
func foldCase(pattern string) string {
	var sb strings.Builder
	var class []rune
	inClass := false

	for _, r := range strings.ToLower(pattern) {
		switch {
		case !inClass && r == '[':
			inClass = true
			class = class[:0]
		case inClass && r == ']' && len(class) > 0 && !(len(class) == 1 && (class[0] == '!' || class[0] == '^')):
			inClass = false
			body := string(class)
			neg := ""
			if body[0] == '!' || body[0] == '^' {
				neg, body = body[:1], body[1:]
			}
			sb.WriteString("[" + neg + body)
			if upper := strings.ToUpper(body); upper != body {
				sb.WriteString(upper)
			}
			sb.WriteByte(']')
		case inClass:
			class = append(class, r)
		case unicode.ToUpper(r) != r:
			sb.WriteByte('[')
			sb.WriteRune(r)
			sb.WriteRune(unicode.ToUpper(r))
			sb.WriteByte(']')
		default:
			sb.WriteRune(r)
		}
	}

	// an unterminated class is literal text
	if inClass {
		sb.WriteString(`\[`)
		sb.WriteString(foldCase(string(class)))
	}
	return sb.String()
}

func anchored(root, p string) (string, bool) {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return "/" + filepath.ToSlash(rel), true
}

func withSlash(p string) string {
	if strings.HasSuffix(p, string(filepath.Separator)) {
		return p
	}
	return p + string(filepath.Separator)
}
