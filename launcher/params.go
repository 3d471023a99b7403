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

package launcher

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ystia/slurmtrain/config"
	"github.com/ystia/slurmtrain/helper/pathutil"
	"github.com/ystia/slurmtrain/helper/stringutil"
)

// Environment variables set by SLURM on the compute node
const (
	EnvJobID       = "SLURM_JOB_ID"
	EnvArrayTaskID = "SLURM_ARRAY_TASK_ID"
	EnvNodeID      = "SLURM_NODEID"
)

// Profile selects the positional arguments layout and the flags template
type Profile string

const (
	// ProfileTrain expects: activation function, learning rate, amp control, width multiplier
	ProfileTrain Profile = "train"
	// ProfileValidate expects: the path of the model to validate
	ProfileValidate Profile = "validate"
)

// Arity returns the number of positional arguments expected by the profile
func (p Profile) Arity() int {
	switch p {
	case ProfileTrain:
		return 4
	case ProfileValidate:
		return 1
	default:
		return -1
	}
}

// ParseProfile returns the Profile matching the given name
func ParseProfile(name string) (Profile, error) {
	p := Profile(strings.ToLower(name))
	if p.Arity() < 0 {
		return "", errors.Errorf("unknown launch profile %q, expecting one of %q or %q", name, ProfileTrain, ProfileValidate)
	}
	return p, nil
}

type badArityError struct {
	profile  Profile
	expected int
	got      int
}

func (e *badArityError) Error() string {
	return fmt.Sprintf("profile %q expects %d positional argument(s), got %d", e.profile, e.expected, e.got)
}

// IsBadArityError checks if an error is due to a wrong number of positional arguments
func IsBadArityError(err error) bool {
	_, ok := errors.Cause(err).(*badArityError)
	return ok
}

// JobParams are the values of a single launch.
//
// They are read once at start and never mutated.
type JobParams struct {
	Profile    Profile
	Actfun     string
	LR         string
	Amp        string
	WidthMult  string
	SavePath   string
	Seed       string
	JobID      string
	NodeID     string
	OutputPath string
	CheckPath  string
}

// NewJobParams builds the parameters of a launch from positional arguments and the
// scheduler environment, retrieved through lookup.
//
// Positional arguments are forwarded verbatim, only their count is checked.
func NewJobParams(cfg config.Launcher, profile Profile, args []string, lookup pathutil.LookupFunc) (JobParams, error) {
	if profile.Arity() < 0 {
		return JobParams{}, errors.Errorf("unknown launch profile %q", profile)
	}
	if len(args) != profile.Arity() {
		return JobParams{}, &badArityError{profile: profile, expected: profile.Arity(), got: len(args)}
	}

	p := JobParams{Profile: profile}
	switch profile {
	case ProfileTrain:
		p.Actfun, p.LR, p.Amp, p.WidthMult = args[0], args[1], args[2], args[3]
	case ProfileValidate:
		p.SavePath = args[0]
	}

	var ok bool
	if p.Seed, ok = lookup(EnvArrayTaskID); !ok || p.Seed == "" {
		p.Seed = strconv.Itoa(cfg.DefaultSeed)
	}
	if p.JobID, ok = lookup(EnvJobID); !ok || p.JobID == "" {
		p.JobID = stringutil.UniqueTimestampedName("local-", "")
	}
	p.NodeID, _ = lookup(EnvNodeID)

	var err error
	p.OutputPath, err = pathutil.Expand(cfg.OutputDir, lookup)
	if err != nil {
		return JobParams{}, err
	}
	p.CheckPath, err = CheckpointPath(cfg.CheckpointRoot, p.JobID, lookup)
	if err != nil {
		return JobParams{}, err
	}
	return p, nil
}

// CheckpointPath returns the checkpoint directory of a job: the expanded root joined with the job id
func CheckpointPath(root, jobID string, lookup pathutil.LookupFunc) (string, error) {
	if jobID == "" {
		return "", errors.New("a job id is required to compute the checkpoint path")
	}
	r, err := pathutil.Expand(root, lookup)
	if err != nil {
		return "", err
	}
	return filepath.Join(r, jobID), nil
}

// Positional returns the positional arguments as they were given
func (p JobParams) Positional() []string {
	switch p.Profile {
	case ProfileTrain:
		return []string{p.Actfun, p.LR, p.Amp, p.WidthMult}
	case ProfileValidate:
		return []string{p.SavePath}
	}
	return nil
}
