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

package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/smartcopy/pkg/scanner"
	"github.com/walteh/smartcopy/pkg/status"
)

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ConfigureOutput turns colors on or off for every printer the CLI uses
func ConfigureOutput(colors bool, debug bool) {
	color.NoColor = !colors
	if colors {
		pterm.EnableColor()
	} else {
		pterm.DisableColor()
	}
	if debug {
		pterm.EnableDebugMessages()
	} else {
		pterm.DisableDebugMessages()
	}
}

// 👤 UserLogger prints progress for people and mirrors it to zerolog
type UserLogger struct {
	log       zerolog.Logger // for debug/error logging
	out       io.Writer
	formatter status.Formatter
}

func NewUserLogger(ctx context.Context, out io.Writer) *UserLogger {
	return &UserLogger{
		log:       *zerolog.Ctx(ctx),
		out:       out,
		formatter: status.NewDefaultFormatter(),
	}
}

func (u *UserLogger) printer(base pterm.PrefixPrinter, prefix string) *pterm.PrefixPrinter {
	return base.WithPrefix(pterm.Prefix{Text: prefix, Style: base.Prefix.Style}).WithWriter(u.out)
}

// LogScan summarizes a finished scan
func (u *UserLogger) LogScan(resp *scanner.Response) {
	msg := fmt.Sprintf("Scanned %d directories, found %d rule files", resp.Stats.DirectoriesScanned, resp.Stats.RuleFilesFound)
	u.printer(pterm.Info, "🔭").Println(msg)
	u.printer(pterm.Debug, "🆔").Println("session " + resp.SessionID)
	u.log.Info().
		Str("session", resp.SessionID).
		Int("directories", resp.Stats.DirectoriesScanned).
		Int("rule_files", resp.Stats.RuleFilesFound).
		Int("conflicts", resp.Stats.ConflictsFound).
		Msg(msg)

	u.LogConflicts(resp.Conflicts)
}

// LogConflicts warns about every directory holding both rule files
func (u *UserLogger) LogConflicts(conflicts []string) {
	for _, dir := range conflicts {
		u.printer(pterm.Warning, "⚠️").Printfln("Conflict: %s has both .copyignore and .copyinclude", dir)
		u.log.Warn().Str("dir", dir).Msg("rule file conflict")
	}
}

func (u *UserLogger) LogStateChange(description string) {
	u.printer(pterm.Info, "📦").Println(description)
	u.log.Info().Msg(description)
}

func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	if valid {
		u.printer(pterm.Success, "✅").Println(description)
		u.log.Info().Msg(description)
		return
	}

	if err != nil {
		u.printer(pterm.Error, "❌").Println(description)
		fmt.Fprintln(u.out, u.formatter.FormatError(err))
		u.log.Error().Err(err).Msg(description)
	} else {
		u.printer(pterm.Warning, "⚠️").Println(description)
		u.log.Warn().Msg(description)
	}
}

func (u *UserLogger) LogLockOperation(path string) {
	u.printer(pterm.Debug, "🔒").Printfln("Locking destination with %s", path)
	u.log.Debug().Str("lock", path).Msg("locking destination")
}
