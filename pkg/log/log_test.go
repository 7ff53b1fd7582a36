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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/smartcopy/pkg/plan"
	"github.com/walteh/smartcopy/pkg/rules"
	"github.com/walteh/smartcopy/pkg/runner"
)

func testJob(id, dst string, mode rules.Mode) plan.Job {
	return plan.Job{ID: id, SrcRoot: "/src" + strings.TrimPrefix(dst, "/dst"), DstRoot: dst, Mode: mode}
}

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "job_start",
			op: func(t *testing.T, logger *Logger) {
				logger.OnJobStart(testJob("a", "/dst/web", rules.ModeWhitelist), 0, 2)
			},
			wantLogs: []string{
				"[job 1/2 /dst/web]",
				"◆ /src/web • whitelist",
			},
		},
		{
			name: "copy_run",
			op: func(t *testing.T, logger *Logger) {
				job := testJob("a", "/dst", rules.ModeBlacklist)
				logger.OnStatus(runner.StatusCopying)
				logger.OnJobStart(job, 0, 1)
				logger.OnLogLine("some tool output")
				logger.OnJobEnd(job, 0, true)
				logger.OnStatus(runner.StatusDone)
			},
			wantLogs: []string{
				"[job 1/1 /dst]",
				"◆ /src • blacklist",
				"✓ /dst                                blacklist  done",
				"✅ Progress: 1/1 (100%)",
				"✅ copied 1 job(s)",
			},
		},
		{
			name: "dry_run",
			op: func(t *testing.T, logger *Logger) {
				job := testJob("a", "/dst", rules.ModeNone)
				logger.OnStatus(runner.StatusDryRun)
				logger.OnJobStart(job, 0, 1)
				logger.OnJobEnd(job, 1, true)
				logger.OnStatus(runner.StatusDone)
			},
			wantLogs: []string{
				"[job 1/1 /dst]",
				"◆ /src • none",
				"✓ /dst                                none       done",
				"✅ Progress: 1/1 (100%)",
				"✅ dry run finished: 1 job(s)",
			},
		},
		{
			name: "failed_job",
			op: func(t *testing.T, logger *Logger) {
				job := testJob("a", "/dst", rules.ModeBlacklist)
				logger.OnStatus(runner.StatusCopying)
				logger.OnJobStart(job, 0, 1)
				logger.OnJobEnd(job, 8, false)
				logger.OnStatus(runner.StatusError)
			},
			wantLogs: []string{
				"[job 1/1 /dst]",
				"◆ /src • blacklist",
				"✗ /dst                                blacklist  exit 8",
				"✅ Progress: 1/1 (100%)",
				"❌ copy failed after 1 job(s)",
			},
		},
		{
			name: "cancelled",
			op: func(t *testing.T, logger *Logger) {
				logger.OnStatus(runner.StatusCancelled)
			},
			wantLogs: []string{
				"⚠️  copy cancelled",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("copying /src")
			},
			wantLogs: []string{
				"smartcopy • copying /src",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.InfoLevel).WithZerolog(zerolog.New(zerolog.TestWriter{T: t}))

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerCountsFailures(t *testing.T) {
	logger := New(io.Discard, zerolog.InfoLevel).WithZerolog(zerolog.Nop())
	job := testJob("a", "/dst", rules.ModeBlacklist)

	logger.OnStatus(runner.StatusCopying)
	logger.OnJobEnd(job, 8, false)
	logger.OnJobEnd(job, 0, true)
	assert.Equal(t, 1, logger.Failed())

	logger.OnStatus(runner.StatusCopying)
	assert.Equal(t, 0, logger.Failed(), "a new run should reset counters")
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.InfoLevel)

	ctx := NewContext(context.Background(), logger)

	got := FromContext(ctx)
	assert.Same(t, logger, got, "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}

func TestJobLineFormatting(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		line JobLine
		want string
	}{
		{
			name: "finished_whitelist_job",
			line: JobLine{Dest: "/dst/web", Mode: rules.ModeWhitelist, Status: "done"},
			want: "    ✓ /dst/web                            whitelist  done           ",
		},
		{
			name: "running_job",
			line: JobLine{Dest: "/dst", Mode: rules.ModeBlacklist, Status: "copying", Running: true},
			want: "    ⟳ /dst                                blacklist  copying        ",
		},
		{
			name: "failed_job",
			line: JobLine{Dest: "/dst", Mode: rules.ModeNone, Status: "exit 16", Failed: true, ExitCode: 16},
			want: "    ✗ /dst                                none       exit 16        ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatJobLine(tt.line))
		})
	}
}
