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
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/smartcopy/pkg/plan"
	"gitlab.com/tozd/go/errors"
)

// 👀 Observer receives execution events. Calls are serialized.
type Observer interface {
	OnStatus(status Status)
	OnJobStart(job plan.Job, index, total int)
	OnJobEnd(job plan.Job, exitCode int, success bool)
	OnLogLine(line string)
}

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) OnStatus(Status)               {}
func (NopObserver) OnJobStart(plan.Job, int, int) {}
func (NopObserver) OnJobEnd(plan.Job, int, bool)  {}
func (NopObserver) OnLogLine(string)              {}

// ExecutorOptions tune an Executor
type ExecutorOptions struct {
	// LockDir holds destination lock files, defaulting to the system temp dir
	LockDir string
	// KillDelay bounds how long a cancelled process may keep its output open
	KillDelay time.Duration
}

// 🏃 Executor runs a plan's jobs one after another with a single Tool
type Executor struct {
	tool     Tool
	observer Observer
	opts     ExecutorOptions

	mu        sync.Mutex
	status    Status
	cancel    context.CancelFunc
	cancelled bool
}

// NewExecutor creates an executor. A nil observer discards events.
func NewExecutor(tool Tool, observer Observer, opts ExecutorOptions) *Executor {
	if observer == nil {
		observer = NopObserver{}
	}
	if opts.KillDelay <= 0 {
		opts.KillDelay = 2 * time.Second
	}
	return &Executor{tool: tool, observer: &syncObserver{inner: observer}, opts: opts}
}

// Status returns the current lifecycle state
func (e *Executor) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// 🛑 Cancel stops the run: jobs not yet started are abandoned and the running process is killed
func (e *Executor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelled = true
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *Executor) setStatus(s Status) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
	e.observer.OnStatus(s)
}

func (e *Executor) isCancelled(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancelled || ctx.Err() != nil
}

// 🏃 Run executes every job in order and stops at the first failure. Invalid plans are refused.
// Unless dryRun is set, the destination is locked for the duration of the run.
func (e *Executor) Run(ctx context.Context, p *plan.Plan, dryRun bool) (err error) {
	logger := zerolog.Ctx(ctx)

	if !p.Valid {
		return errors.Errorf("running plan %s with %d conflicts: %w", p.ID, len(p.Conflicts), ErrPlanInvalid)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// a Cancel that arrived before Run is kept and stops the run before its first job
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.cancel = nil
		e.cancelled = false
		e.mu.Unlock()

		switch {
		case err == nil:
			e.setStatus(StatusDone)
		case errors.Is(err, ErrCancelled):
			e.setStatus(StatusCancelled)
		default:
			e.setStatus(StatusError)
		}
	}()

	if !dryRun {
		fl, err := lockDestination(e.opts.LockDir, p.DestRoot)
		if err != nil {
			return err
		}
		defer func() {
			if uerr := fl.Unlock(); uerr != nil {
				logger.Warn().Err(uerr).Str("dest", p.DestRoot).Msg("releasing destination lock")
			}
		}()
		e.setStatus(StatusCopying)
	} else {
		e.setStatus(StatusDryRun)
	}

	e.observer.OnLogLine(fmt.Sprintf("plan has %d job(s)", len(p.Jobs)))

	for i, job := range p.Jobs {
		if e.isCancelled(runCtx) {
			e.observer.OnLogLine("copy cancelled")
			return errors.Errorf("before job %d of %d: %w", i+1, len(p.Jobs), ErrCancelled)
		}

		e.observer.OnJobStart(job, i, len(p.Jobs))
		logger.Info().Str("job", job.ID).Str("src", job.SrcRoot).Str("dst", job.DstRoot).Msg("starting job")

		code, err := e.runJob(runCtx, job, dryRun)
		if err != nil {
			e.observer.OnJobEnd(job, code, false)
			if e.isCancelled(runCtx) {
				return errors.Errorf("job %s: %w", job.ID, ErrCancelled)
			}
			return errors.Errorf("job %s: %w", job.ID, err)
		}
		e.observer.OnJobEnd(job, code, true)
	}

	e.observer.OnLogLine("copy completed")
	return nil
}

// runJob starts every invocation of the job and returns the last exit code
func (e *Executor) runJob(ctx context.Context, job plan.Job, dryRun bool) (int, error) {
	invocations, err := e.tool.Invocations(ctx, job, dryRun)
	if err != nil {
		return -1, errors.Errorf("translating job for %s: %w", e.tool.Name(), err)
	}

	code := 0
	for _, inv := range invocations {
		e.observer.OnLogLine("executing: " + inv.String())

		code, err = e.start(ctx, inv)
		if err != nil {
			return code, err
		}
		if !e.tool.Succeeded(code) {
			return code, errors.Errorf("%s exited with %d: %w", inv.Name, code, ErrJobFailed)
		}
	}
	return code, nil
}

func (e *Executor) start(ctx context.Context, inv Invocation) (int, error) {
	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	cmd.WaitDelay = e.opts.KillDelay
	if inv.Stdin != "" {
		cmd.Stdin = strings.NewReader(inv.Stdin)
	}

	lw := &lineWriter{emit: e.observer.OnLogLine}
	cmd.Stdout = lw
	cmd.Stderr = lw

	err := cmd.Run()
	lw.flush()

	if ctx.Err() != nil {
		return -1, errors.Errorf("running %s: %w", inv.Name, ErrCancelled)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, errors.Errorf("running %s: %w", inv.Name, err)
	}
	return 0, nil
}

// lineWriter splits process output into non-empty trimmed lines
type lineWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	emit func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// keep the partial line for the next write
			w.buf.Reset()
			w.buf.WriteString(line)
			return len(p), nil
		}
		w.send(line)
	}
}

func (w *lineWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.send(w.buf.String())
	w.buf.Reset()
}

func (w *lineWriter) send(line string) {
	if line = strings.TrimSpace(line); line != "" {
		w.emit(line)
	}
}

// syncObserver serializes calls into an Observer
type syncObserver struct {
	mu    sync.Mutex
	inner Observer
}

func (o *syncObserver) OnStatus(s Status) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inner.OnStatus(s)
}

func (o *syncObserver) OnJobStart(job plan.Job, index, total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inner.OnJobStart(job, index, total)
}

func (o *syncObserver) OnJobEnd(job plan.Job, exitCode int, success bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inner.OnJobEnd(job, exitCode, success)
}

func (o *syncObserver) OnLogLine(line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inner.OnLogLine(line)
}
