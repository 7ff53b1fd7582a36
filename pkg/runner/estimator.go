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
	"os"

	"github.com/walteh/smartcopy/pkg/plan"
	"github.com/walteh/smartcopy/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// 📏 WalkEstimator predicts a job's size by walking its subtree and applying its patterns,
// without starting the copy tool
type WalkEstimator struct{}

var _ plan.Estimator = WalkEstimator{}

// Estimate counts the files and bytes the job would copy
func (WalkEstimator) Estimate(ctx context.Context, job plan.Job) (plan.Estimate, error) {
	var est plan.Estimate

	err := walkJob(ctx, job, func(path string, d os.DirEntry) (bool, error) {
		switch job.Mode {
		case rules.ModeBlacklist:
			if rules.MatchPatterns(job.Patterns, path, d.IsDir()).Matched {
				return false, nil
			}
		case rules.ModeWhitelist:
			if !d.IsDir() && !rules.MatchPatterns(job.Patterns, path, false).Matched {
				return true, nil
			}
		}

		if d.IsDir() {
			return true, nil
		}

		info, err := d.Info()
		if err != nil {
			return true, nil
		}
		est.Files++
		est.Bytes += info.Size()
		return true, nil
	})
	if err != nil {
		return plan.Estimate{}, errors.Errorf("estimating %s: %w", job.SrcRoot, err)
	}
	return est, nil
}
