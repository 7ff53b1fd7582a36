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

package status

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/walteh/smartcopy/pkg/rules"
	"github.com/walteh/smartcopy/pkg/scanner"
)

// 🎨 Display configuration
const (
	depthIndent = 2  // spaces per tree level
	nameWidth   = 35 // Base width for the node name
	stateWidth  = 10 // Width for the decision
)

// 🎯 FormatTreeLine formats a node at the given depth for a tree listing
func FormatTreeLine(node rules.TreeNode, depth int) string {
	var prefix string
	switch node.State {
	case rules.StateIncluded:
		prefix = color.GreenString("✓")
	case rules.StateExcluded:
		prefix = color.HiBlackString("✗")
	case rules.StateConflict:
		prefix = color.RedString("!")
	default:
		prefix = color.YellowString("?")
	}

	name := DisplayName(node)
	namePart := fmt.Sprintf("%-*s", max(nameWidth-depth*depthIndent, len(name)), name)
	statePart := fmt.Sprintf("%-*s", stateWidth, node.State.String())

	modePart := ""
	if node.IsDir && node.ModeAtPath != rules.ModeNone {
		modePart = color.CyanString(node.ModeAtPath.String())
	}

	return strings.TrimRight(fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", depth*depthIndent),
		prefix,
		namePart,
		statePart,
		modePart,
	), " ")
}

// 🔍 FormatExplain renders an explain result as report lines
func FormatExplain(res *scanner.ExplainResult) []string {
	kind := "file"
	if res.IsDir {
		kind = "directory"
	}

	lines := []string{
		fmt.Sprintf("%s %s (%s)", StateEmoji(res.Decision), res.Path, kind),
		fmt.Sprintf("   decision: %s", res.Decision),
		fmt.Sprintf("   mode:     %s", res.Mode),
	}

	if len(res.RuleChain) == 0 {
		lines = append(lines, "   rules:    none")
	} else {
		lines = append(lines, "   rules:")
		for _, file := range res.RuleChain {
			lines = append(lines, "     - "+file)
		}
	}

	if len(res.MatchingPatterns) > 0 {
		lines = append(lines, "   matched:")
		for _, p := range res.MatchingPatterns {
			lines = append(lines, fmt.Sprintf("     - %q (%s:%d)", p.Text, filepath.Base(p.SourceFile), p.LineNumber))
		}
	}

	return lines
}
