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

	"github.com/pkg/errors"

	"github.com/ystia/slurmtrain/helper/stringutil"
	"github.com/ystia/slurmtrain/log"
)

var jobIDRegexp = regexp.MustCompile(`^\d+(_\d+)?$`)

type noJobFoundError struct {
	jobID string
}

func (e *noJobFoundError) Error() string {
	return fmt.Sprintf("no job found with id %q", e.jobID)
}

// IsNoJobFoundError checks if err is due to an unknown job id
func IsNoJobFoundError(err error) bool {
	_, ok := errors.Cause(err).(*noJobFoundError)
	return ok
}

func checkJobID(jobID string) error {
	if !jobIDRegexp.MatchString(jobID) {
		return errors.Errorf("invalid job id %q", jobID)
	}
	return nil
}

// JobInfo returns the properties of a job as reported by scontrol
func JobInfo(ctx context.Context, r Runner, jobID string) (map[string]string, error) {
	if err := checkJobID(jobID); err != nil {
		return nil, err
	}
	out, err := r.RunCommand(ctx, fmt.Sprintf("scontrol show job %s", jobID))
	if strings.Contains(out, "Invalid job id specified") || (err != nil && strings.Contains(err.Error(), "Invalid job id specified")) {
		return nil, &noJobFoundError{jobID: jobID}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get information of job %s: %s", jobID, out)
	}
	info := parseJobInfo(out)
	if len(info) == 0 {
		return nil, &noJobFoundError{jobID: jobID}
	}
	return info, nil
}

// parseJobInfo parses the Key=Value tokens of scontrol output.
// A token without '=' belongs to the value of the previous key.
func parseJobInfo(out string) map[string]string {
	info := make(map[string]string)
	var last string
	for _, tok := range strings.Fields(out) {
		if k, v, ok := stringutil.ParseKeyValue(tok); ok {
			info[k] = v
			last = k
			continue
		}
		if last != "" {
			info[last] += " " + tok
		}
	}
	return info
}

// Cancel cancels a job
func Cancel(ctx context.Context, r Runner, jobID string) error {
	if err := checkJobID(jobID); err != nil {
		return err
	}
	out, err := r.RunCommand(ctx, fmt.Sprintf("scancel %s", jobID))
	if err != nil {
		return errors.Wrapf(err, "failed to cancel job %s: %s", jobID, out)
	}
	log.Printf("Job %s cancelled", jobID)
	return nil
}

// IsActiveState returns true if a job in this state is still queued or running
func IsActiveState(state string) bool {
	switch state {
	case "RUNNING", "PENDING", "COMPLETING", "CONFIGURING", "SIGNALING", "RESIZING", "REQUEUED", "SUSPENDED":
		return true
	}
	return false
}
