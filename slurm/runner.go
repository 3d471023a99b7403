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
	"strings"

	"github.com/pkg/errors"

	"github.com/ystia/slurmtrain/config"
	"github.com/ystia/slurmtrain/helper/executil"
	"github.com/ystia/slurmtrain/helper/sshutil"
	"github.com/ystia/slurmtrain/log"
)

// Runner runs a shell command on a SLURM client node and returns its combined output
type Runner interface {
	RunCommand(ctx context.Context, cmd string) (string, error)
}

// LocalRunner runs commands on the local host through bash
type LocalRunner struct {
	Shell string
}

// RunCommand implements Runner
func (r LocalRunner) RunCommand(ctx context.Context, cmd string) (string, error) {
	shell := r.Shell
	if shell == "" {
		shell = "bash"
	}
	log.Debugf("Running %q", cmd)
	out, err := executil.Command(ctx, shell, "-c", cmd).CombinedOutput()
	return strings.TrimSpace(string(out)), errors.Wrapf(err, "command %q failed: %s", cmd, out)
}

// NewRunner returns an SSH runner if a host is configured and a LocalRunner otherwise
func NewRunner(cfg config.SSH) (Runner, error) {
	if cfg.Host == "" {
		return LocalRunner{}, nil
	}
	client, err := sshutil.NewClient(cfg.User, cfg.Host, cfg.Port, cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	return client, nil
}
