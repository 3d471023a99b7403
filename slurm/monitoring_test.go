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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ystia/slurmtrain/helper/sshutil"
)

const scontrolOutput = `JobId=4242 JobName=train relu
   UserId=jdoe(1000) GroupId=jdoe(1000) MCS_label=N/A
   Priority=4294901759 Nice=0 Account=(null) QOS=normal
   JobState=RUNNING Reason=None Dependency=(null)
   RunTime=00:12:34 TimeLimit=3-00:00:00 TimeMin=N/A
   Command=/scratch/jdoe/b-1.batch
   WorkDir=/scratch/jdoe
   StdErr=/scratch/jdoe/slurm-4242.out
   StdOut=/scratch/jdoe/slurm-4242.out
`

func TestJobInfo(t *testing.T) {
	t.Parallel()
	client := &sshutil.MockSSHClient{MockRunCommand: func(string) (string, error) { return scontrolOutput, nil }}
	info, err := JobInfo(context.Background(), client, "4242")
	require.NoError(t, err)
	assert.Equal(t, []string{"scontrol show job 4242"}, client.Commands())
	assert.Equal(t, "4242", info["JobId"])
	assert.Equal(t, "train relu", info["JobName"])
	assert.Equal(t, "RUNNING", info["JobState"])
	assert.Equal(t, "None", info["Reason"])
	assert.Equal(t, "00:12:34", info["RunTime"])
	assert.Equal(t, "/scratch/jdoe/slurm-4242.out", info["StdOut"])
	assert.Equal(t, "jdoe(1000)", info["UserId"])
}

func TestJobInfoErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		jobID      string
		output     string
		err        error
		noJobFound bool
	}{
		{"InvalidJobID", "42; rm -rf /", "", nil, false},
		{"UnknownJob", "42", "slurm_load_jobs error: Invalid job id specified", errors.New("exit status 1"), true},
		{"EmptyOutput", "42", "", nil, true},
		{"CommandFailure", "42", "scontrol: command not found", errors.New("exit status 127"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &sshutil.MockSSHClient{MockRunCommand: func(string) (string, error) { return tt.output, tt.err }}
			_, err := JobInfo(context.Background(), client, tt.jobID)
			require.Error(t, err)
			assert.Equal(t, tt.noJobFound, IsNoJobFoundError(err))
		})
	}
}

func TestCancel(t *testing.T) {
	t.Parallel()
	client := &sshutil.MockSSHClient{}
	require.NoError(t, Cancel(context.Background(), client, "4242_3"))
	assert.Equal(t, []string{"scancel 4242_3"}, client.Commands())

	failing := &sshutil.MockSSHClient{MockRunCommand: func(string) (string, error) {
		return "scancel: error: Kill job error on job id 4242: Access/permission denied", errors.New("exit status 1")
	}}
	err := Cancel(context.Background(), failing, "4242")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")

	assert.Error(t, Cancel(context.Background(), client, ""))
}

func TestIsActiveState(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"RUNNING", "PENDING", "COMPLETING"} {
		assert.True(t, IsActiveState(s), s)
	}
	for _, s := range []string{"COMPLETED", "FAILED", "CANCELLED", "TIMEOUT", ""} {
		assert.False(t, IsActiveState(s), s)
	}
}
