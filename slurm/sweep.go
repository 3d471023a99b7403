// Copyright 2018 Bull S.A.S. Atos Technologies - Bull, Rue Jean Jaures, B.P.68, 78340, Les Clayes-sous-Bois, France.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package slurm

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Sweep submits specs with at most maxParallel concurrent submissions.
//
// Every spec is submitted even if some fail. The ids of the submitted jobs are
// returned in the order of specs and failures are aggregated in a
// *multierror.Error.
func (s *Submitter) Sweep(ctx context.Context, specs []JobSpec, maxParallel int) ([]string, error) {
	ids := make([]string, len(specs))
	errs := make([]error, len(specs))

	var g errgroup.Group
	if maxParallel > 0 {
		g.SetLimit(maxParallel)
	}
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = errors.Wrapf(err, "job %q not submitted", spec.Name)
				return nil
			}
			ids[i], errs[i] = s.Submit(ctx, spec)
			return nil
		})
	}
	g.Wait()

	var result *multierror.Error
	for _, err := range errs {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return lo.Compact(ids), result.ErrorOrNil()
}

// SweepSpecs derives one spec per distinct value from base.
//
// The value is appended to the job name and command builds the command of each job.
func SweepSpecs(base JobSpec, values []string, command func(value string) []string) []JobSpec {
	values = lo.Uniq(lo.Compact(values))
	return lo.Map(values, func(v string, _ int) JobSpec {
		spec := base
		if base.Name != "" {
			spec.Name = fmt.Sprintf("%s-%s", base.Name, v)
		} else {
			spec.Name = v
		}
		spec.Command = command(v)
		return spec
	})
}
