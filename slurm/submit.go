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
	"regexp"
	"strings"

	metrics "github.com/armon/go-metrics"
	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
	"github.com/satori/go.uuid"

	"github.com/ystia/slurmtrain/log"
)

const heredocDelimiter = "SLURMTRAIN_BATCH_EOF"

var batchOutputRegexp = regexp.MustCompile(`Submitted batch job (\d+)`)

// Submitter submits batch jobs through a Runner
type Submitter struct {
	Runner Runner
}

// NewSubmitter returns a Submitter using the given runner
func NewSubmitter(r Runner) *Submitter {
	return &Submitter{Runner: r}
}

// Submit uploads the batch script of spec, submits it and returns the SLURM job id
func (s *Submitter) Submit(ctx context.Context, spec JobSpec) (string, error) {
	script, err := BatchScript(spec)
	if err != nil {
		return "", err
	}
	cmd := submitCommand(spec.WorkingDir, fmt.Sprintf("b-%s.batch", uuid.NewV4()), script)
	output, err := s.Runner.RunCommand(ctx, cmd)
	if err != nil {
		metrics.IncrCounter([]string{"slurm", "submit", "failed"}, 1)
		log.Debugf("sbatch output: %q", output)
		return "", errors.Wrapf(err, "failed to submit job %q: %s", spec.Name, output)
	}
	jobID, err := parseJobIDFromBatchOutput(output)
	if err != nil {
		metrics.IncrCounter([]string{"slurm", "submit", "failed"}, 1)
		return "", err
	}
	metrics.IncrCounter([]string{"slurm", "submit"}, 1)
	log.Printf("Job %q submitted with id %s", spec.Name, jobID)
	return jobID, nil
}

// submitCommand writes the script in a temporary batch file, submits it and
// removes the file whatever the sbatch result is.
func submitCommand(workingDir, batchFile, script string) string {
	var b strings.Builder
	if workingDir != "" {
		fmt.Fprintf(&b, "mkdir -p %[1]s && cd %[1]s || exit 1\n", shellquote.Join(workingDir))
	}
	fmt.Fprintf(&b, "cat <<'%s' > %s\n", heredocDelimiter, batchFile)
	b.WriteString(script)
	if !strings.HasSuffix(script, "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s\n", heredocDelimiter)
	fmt.Fprintf(&b, "sbatch %[1]s; rc=$?; rm -f %[1]s; exit $rc", batchFile)
	return b.String()
}

func parseJobIDFromBatchOutput(output string) (string, error) {
	m := batchOutputRegexp.FindStringSubmatch(output)
	if m == nil {
		return "", errors.Errorf("failed to retrieve job id from sbatch output: %q", output)
	}
	return m[1], nil
}
