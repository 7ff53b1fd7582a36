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
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"
)

// LockPath names the advisory lock file for a destination. The name is derived from the
// destination path so every process agrees on it without writing into the destination.
func LockPath(lockDir, dest string) string {
	if lockDir == "" {
		lockDir = os.TempDir()
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.Clean(dest)))
	return filepath.Join(lockDir, "smartcopy-"+id.String()+".lock")
}

// 🔒 lockDestination takes the advisory lock for dest without blocking
func lockDestination(lockDir, dest string) (*flock.Flock, error) {
	path := LockPath(lockDir, dest)
	fl := flock.New(path)

	ok, err := fl.TryLock()
	if err != nil {
		return nil, errors.Errorf("locking %s: %w", path, err)
	}
	if !ok {
		return nil, errors.Errorf("locking %s for %s: %w", path, dest, ErrDestinationLocked)
	}
	return fl, nil
}
