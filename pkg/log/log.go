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
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/smartcopy/pkg/plan"
	"github.com/walteh/smartcopy/pkg/rules"
	"github.com/walteh/smartcopy/pkg/runner"
	"github.com/walteh/smartcopy/pkg/status"
)

// 🎨 Display configuration
const (
	jobIndent   = 4  // spaces to indent job entries
	nameWidth   = 35 // Base width for the destination
	modeWidth   = 10 // Width for the rule mode
	statusWidth = 15 // Width for status text
)

// 🎯 JobLine is one job row printed to the console
type JobLine struct {
	Dest     string     // Destination path
	Mode     rules.Mode // Mode the job copies with
	Status   string     // Operation status
	Running  bool       // Whether the job just started
	Failed   bool       // Whether the job failed
	ExitCode int        // Tool exit code
}

// 🎯 Logger prints copy progress to a console and mirrors it to zerolog.
// It implements runner.Observer.
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	formatter status.Formatter
	mu        sync.Mutex
	dryRun    bool
	total     int
	done      int
	failed    int
	lines     int
}

var _ runner.Observer = (*Logger)(nil)

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:      zlog,
		console:   console,
		formatter: status.NewDefaultFormatter(),
	}
}

// WithZerolog replaces the structured sink
func (l *Logger) WithZerolog(zlog zerolog.Logger) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zlog = zlog
	return l
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatJobLine formats a job row for display
func formatJobLine(line JobLine) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case line.Failed:
		symbol = '✗'
		symbolColor = color.FgRed
	case line.Running:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		symbol = '✓'
		symbolColor = color.FgGreen
	}

	var modeColor color.Attribute
	switch line.Mode {
	case rules.ModeWhitelist:
		modeColor = color.FgCyan
	case rules.ModeBlacklist:
		modeColor = color.FgYellow
	default:
		modeColor = color.FgBlue
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", jobIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, line.Dest),
		color.New(modeColor).Sprint(fmt.Sprintf("%-*s", modeWidth, line.Mode.String())),
		fmt.Sprintf("%-*s", statusWidth, line.Status))
}

// 📝 OnStatus prints the executor status transitions worth showing
func (l *Logger) OnStatus(s runner.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch s {
	case runner.StatusDryRun:
		l.dryRun = true
		l.resetLocked()
	case runner.StatusCopying:
		l.dryRun = false
		l.resetLocked()
	case runner.StatusDone:
		if l.dryRun {
			fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(fmt.Sprintf("dry run finished: %d job(s)", l.done)))
		} else {
			fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(fmt.Sprintf("copied %d job(s)", l.done)))
		}
	case runner.StatusCancelled:
		fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint("copy cancelled"))
	case runner.StatusError:
		fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(fmt.Sprintf("copy failed after %d job(s)", l.done)))
	}

	l.zlog.Info().Str("status", s.String()).Msg("status changed")
}

func (l *Logger) resetLocked() {
	l.total = 0
	l.done = 0
	l.failed = 0
	l.lines = 0
}

// 📝 OnJobStart prints the job header
func (l *Logger) OnJobStart(job plan.Job, index, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.total = total
	l.lines = 0

	fmt.Fprintf(l.console, "[job %d/%d %s]\n", index+1, total, color.New(color.FgCyan).Sprint(job.DstRoot))
	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(job.SrcRoot),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(job.Mode.String()))

	l.zlog.Info().
		Str("job", job.ID).
		Str("src", job.SrcRoot).
		Str("dst", job.DstRoot).
		Str("mode", job.Mode.String()).
		Int("index", index).
		Int("total", total).
		Msg("starting job")
}

// 📝 OnJobEnd prints the job result row
func (l *Logger) OnJobEnd(job plan.Job, exitCode int, success bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	status := "done"
	if !success {
		status = fmt.Sprintf("exit %d", exitCode)
		l.failed++
	}
	l.done++

	fmt.Fprintln(l.console, formatJobLine(JobLine{
		Dest:     job.DstRoot,
		Mode:     job.Mode,
		Status:   status,
		Failed:   !success,
		ExitCode: exitCode,
	}))
	fmt.Fprintln(l.console, l.formatter.FormatProgress(l.done, l.total))

	l.zlog.Info().
		Str("job", job.ID).
		Int("exit_code", exitCode).
		Bool("success", success).
		Int("lines", l.lines).
		Msg("job complete")
}

// 📝 OnLogLine forwards tool output to the structured log
func (l *Logger) OnLogLine(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines++
	l.zlog.Debug().Str("line", line).Msg("tool output")
}

// Failed reports how many jobs ended unsuccessfully since the last run started
func (l *Logger) Failed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failed
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("smartcopy")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

func (l *Logger) Infof(format string, args ...interface{})    { l.Info(fmt.Sprintf(format, args...)) }
func (l *Logger) Warningf(format string, args ...interface{}) { l.Warning(fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...interface{})   { l.Error(fmt.Sprintf(format, args...)) }
func (l *Logger) Successf(format string, args ...interface{}) { l.Success(fmt.Sprintf(format, args...)) }
