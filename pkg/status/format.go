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

	"github.com/walteh/smartcopy/pkg/rules"
)

const (
	EmojiProgress = "⏳"
	EmojiComplete = "✅"
	MsgProgress   = "%s Progress: %d/%d (%.0f%%)"
)

// Formatter defines how nodes, progress and errors are shown
type Formatter interface {
	// FormatNode formats a single tree node
	FormatNode(node rules.TreeNode) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFormatter provides a default implementation of Formatter
type DefaultFormatter struct{}

var _ Formatter = (*DefaultFormatter)(nil)

// NewDefaultFormatter creates a new DefaultFormatter
func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

// StateEmoji returns the marker shown next to a node in the given state
func StateEmoji(state rules.NodeState) string {
	switch state {
	case rules.StateIncluded:
		return "✅"
	case rules.StateExcluded:
		return "🚫"
	case rules.StateConflict:
		return "⚠️ "
	default:
		return "❔"
	}
}

// DisplayName returns the node name, with a trailing slash for directories
func DisplayName(node rules.TreeNode) string {
	if node.IsDir {
		return node.Name + "/"
	}
	return node.Name
}

// FormatNode formats a node with its decision marker
func (f *DefaultFormatter) FormatNode(node rules.TreeNode) string {
	line := fmt.Sprintf("%s %s", StateEmoji(node.State), DisplayName(node))
	if node.IsDir && node.ModeAtPath != rules.ModeNone {
		line += fmt.Sprintf(" (%s)", node.ModeAtPath)
	}
	return line
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFormatter) FormatProgress(current, total int) string {
	if current < 0 {
		current = 0
	}
	if total < 0 {
		total = 0
	}

	var percentage float64
	if total > 0 {
		percentage = min(float64(current)/float64(total)*100, 100)
	}

	if current >= total {
		return fmt.Sprintf(MsgProgress, EmojiComplete, current, total, percentage)
	}
	return fmt.Sprintf(MsgProgress, EmojiProgress, current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
