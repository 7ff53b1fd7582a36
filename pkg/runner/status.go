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

// 🚦 Status is the lifecycle state of an Executor
type Status int

const (
	StatusIdle Status = iota
	StatusScanning
	StatusReady
	StatusDryRun
	StatusCopying
	StatusCancelled
	StatusDone
	StatusError
)

// String returns a string representation of Status
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusScanning:
		return "scanning"
	case StatusReady:
		return "ready"
	case StatusDryRun:
		return "dryrun"
	case StatusCopying:
		return "copying"
	case StatusCancelled:
		return "cancelled"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}
