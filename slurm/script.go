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
	"fmt"
	"regexp"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"

	"github.com/ystia/slurmtrain/config"
	"github.com/ystia/slurmtrain/helper/sizeutil"
)

var envNameRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// JobSpec describes a batch job
type JobSpec struct {
	Name        string
	Partition   string
	QOS         string
	GPUs        int
	CPUsPerTask int
	// Mem is either a number of MB or a human readable size like 64GB
	Mem        string
	Time       string
	Nodes      int
	Array      string
	Output     string
	Error      string
	WorkingDir string
	// Extra holds additional sbatch options, a nil or empty value gives a flag without value
	Extra   config.DynamicMap
	Env     config.DynamicMap
	Command []string
}

// NewJobSpec returns a JobSpec filled from the slurm section of the configuration
func NewJobSpec(cfg config.Slurm, command []string) JobSpec {
	return JobSpec{
		Name:        cfg.JobName,
		Partition:   cfg.Partition,
		QOS:         cfg.QOS,
		GPUs:        cfg.GPUs,
		CPUsPerTask: cfg.CPUsPerTask,
		Mem:         cfg.Mem,
		Time:        cfg.Time,
		Nodes:       cfg.Nodes,
		Array:       cfg.Array,
		Output:      cfg.Output,
		Error:       cfg.Error,
		WorkingDir:  cfg.WorkingDir,
		Extra:       cfg.Extra,
		Command:     command,
	}
}

// Directives returns the sbatch options of the job in their rendering order
func (s JobSpec) Directives() ([]string, error) {
	var opts []string
	add := func(format string, a ...interface{}) {
		opts = append(opts, fmt.Sprintf(format, a...))
	}
	if s.Name != "" {
		add("--job-name=%s", s.Name)
	}
	if s.Partition != "" {
		add("--partition=%s", s.Partition)
	}
	if s.QOS != "" {
		add("--qos=%s", s.QOS)
	}
	if s.Nodes > 0 {
		add("--nodes=%d", s.Nodes)
	}
	if s.GPUs > 0 {
		add("--gres=gpu:%d", s.GPUs)
	}
	if s.CPUsPerTask > 0 {
		add("--cpus-per-task=%d", s.CPUsPerTask)
	}
	mem, err := sizeutil.SlurmMem(s.Mem)
	if err != nil {
		return nil, err
	}
	if mem != "" {
		add("--mem=%s", mem)
	}
	if s.Time != "" {
		add("--time=%s", s.Time)
	}
	if s.Array != "" {
		add("--array=%s", s.Array)
	}
	if s.Output != "" {
		add("--output=%s", s.Output)
	}
	if s.Error != "" {
		add("--error=%s", s.Error)
	}
	for _, k := range s.Extra.Keys() {
		name := strings.TrimLeft(k, "-")
		if name == "" {
			return nil, errors.Errorf("invalid sbatch option %q", k)
		}
		if v := s.Extra.GetString(k); v != "" {
			add("--%s=%s", name, v)
		} else {
			add("--%s", name)
		}
	}
	return opts, nil
}

// BatchScript renders the sbatch script of a job
func BatchScript(s JobSpec) (string, error) {
	if len(s.Command) == 0 {
		return "", errors.New("batch job without command")
	}
	opts, err := s.Directives()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	for _, o := range opts {
		fmt.Fprintf(&b, "#SBATCH %s\n", o)
	}
	b.WriteString("\n")
	for _, k := range s.Env.Keys() {
		if !envNameRegexp.MatchString(k) {
			return "", errors.Errorf("invalid environment variable name %q", k)
		}
		fmt.Fprintf(&b, "export %s=%s\n", k, shellquote.Join(s.Env.GetString(k)))
	}
	if s.WorkingDir != "" {
		fmt.Fprintf(&b, "cd %s\n", shellquote.Join(s.WorkingDir))
	}
	b.WriteString(shellquote.Join(s.Command...))
	b.WriteString("\n")
	return b.String(), nil
}
