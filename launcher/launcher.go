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

// Package launcher starts the external training program of a SLURM job.
//
// A launch prepares the output and checkpoint directories, prints diagnostics
// and runs one external command with a deterministic list of flags. Failures
// of the external command are neither retried nor interpreted: its exit status
// becomes the launcher's one.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	metrics "github.com/armon/go-metrics"
	"github.com/pkg/errors"

	"github.com/ystia/slurmtrain/config"
	"github.com/ystia/slurmtrain/helper/executil"
	"github.com/ystia/slurmtrain/helper/metricsutil"
	"github.com/ystia/slurmtrain/log"
)

// ExitError is returned when the external command exits with a non-zero status
type ExitError struct {
	Code    int
	Command string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %s exited with status %d", e.Command, e.Code)
}

// IsExitError returns the exit status carried by err, if any
func IsExitError(err error) (int, bool) {
	if e, ok := errors.Cause(err).(*ExitError); ok {
		return e.Code, true
	}
	return 0, false
}

// Launcher runs the training program of a job
type Launcher struct {
	cfg    config.Configuration
	params JobParams

	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
	Diagnostics Reporter
}

// New returns a Launcher wired to the process standard streams
func New(cfg config.Configuration, params JobParams) *Launcher {
	return &Launcher{
		cfg:    cfg,
		params: params,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Command returns the command the launcher runs
func (l *Launcher) Command() Command {
	return BuildCommand(l.cfg, l.params)
}

// Run prepares the directories and runs the external command once, blocking until it exits.
func (l *Launcher) Run(ctx context.Context) error {
	defer metrics.MeasureSince([]string{"launcher", "run"}, time.Now())

	if err := PrepareDirectories(l.params, l.cfg.Launcher.PurgeMarker); err != nil {
		return err
	}

	cmd := l.Command()
	if p, err := NewManifest(l.params, cmd).Write(l.params.OutputPath); err != nil {
		log.Warnf("%v", err)
	} else {
		log.Debugf("Launch manifest written to %q", p)
	}

	if l.Diagnostics != nil {
		if err := l.Diagnostics.Report(ctx, l.Stdout); err != nil {
			return err
		}
	}

	log.Printf("Job %s (seed %s): running %s", l.params.JobID, l.params.Seed, cmd)
	c := executil.Command(ctx, cmd.Name, cmd.Args...)
	c.Stdin = l.Stdin
	c.Stdout = l.Stdout
	c.Stderr = l.Stderr
	c.Env = append(os.Environ(), cmd.Env...)

	err := c.Run()
	code := executil.ExitCode(err)
	metrics.IncrCounter(metricsutil.CleanupMetricKey("launcher", "exit", strconv.Itoa(code)), 1)
	if err == nil {
		return nil
	}
	if code > 0 {
		return &ExitError{Code: code, Command: cmd.Name}
	}
	return errors.Wrapf(err, "failed to run %q", cmd.Name)
}
