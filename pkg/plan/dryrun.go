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

package plan

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Estimate is the predicted size of one job
type Estimate struct {
	Files int64 `json:"files"`
	Bytes int64 `json:"bytes"`
}

// Estimator predicts what a job would copy without copying anything
type Estimator interface {
	Estimate(ctx context.Context, job Job) (Estimate, error)
}

// 🧪 DryRunReport summarizes a plan and the predicted size of running it
type DryRunReport struct {
	Plan           *Plan    `json:"plan"`
	Valid          bool     `json:"valid"`
	Conflicts      []string `json:"conflicts"`
	EstimatedFiles int64    `json:"estimated_files"`
	EstimatedBytes int64    `json:"estimated_bytes"`
}

// 🧪 DryRun builds the plan and sums the estimate of every job. An invalid plan is reported
// as is. A job whose estimate fails is logged and left out of the totals.
func (b *Builder) DryRun(ctx context.Context, id string, rootOnly bool, est Estimator) (*DryRunReport, error) {
	logger := zerolog.Ctx(ctx)

	p, err := b.Build(ctx, id, rootOnly)
	if err != nil {
		return nil, errors.Errorf("dry run: %w", err)
	}

	report := &DryRunReport{
		Plan:      p,
		Valid:     p.Valid,
		Conflicts: p.Conflicts,
	}
	if !p.Valid {
		return report, nil
	}

	for _, job := range p.Jobs {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("dry run: %w", err)
		}

		e, err := est.Estimate(ctx, job)
		if err != nil {
			logger.Warn().Err(err).Str("job", job.ID).Str("src", job.SrcRoot).Msg("estimating job")
			continue
		}
		report.EstimatedFiles += e.Files
		report.EstimatedBytes += e.Bytes
	}

	return report, nil
}
