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

package scanner

import "gitlab.com/tozd/go/errors"

var (
	// ErrSessionNotFound is returned for an unknown or evicted session id
	ErrSessionNotFound = errors.Base("session not found")

	// ErrContextNotFound means a path has no derivable rule context, usually because it lies
	// outside the session's source root. Seeing it points at a caller bug.
	ErrContextNotFound = errors.Base("context not found")

	// ErrInvalidSource is returned when the scan source is missing or not a directory
	ErrInvalidSource = errors.Base("invalid source")
)
