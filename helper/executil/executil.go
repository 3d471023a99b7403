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

//go:build !windows
// +build !windows

package executil

import (
	"bytes"
	"context"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"

	"github.com/ystia/slurmtrain/log"
)

// Cmd wraps an exec.Cmd started in its own process group.
//
// When the context is cancelled the whole group is killed, so the
// workers spawned by a distributed launcher do not outlive it.
type Cmd struct {
	ctx context.Context
	*exec.Cmd
	waitDone chan struct{}
}

// Command returns the Cmd struct to execute the named program with
// the given arguments.
func Command(ctx context.Context, name string, arg ...string) *Cmd {
	log.Debugf("The command '%s %q' will be executed...", name, arg)
	if ctx == nil {
		panic("nil Context")
	}
	innerCmd := exec.Command(name, arg...)
	cmd := &Cmd{ctx: ctx, Cmd: innerCmd, waitDone: make(chan struct{})}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	return cmd
}

// Run starts the specified command and waits for it to complete.
func (c *Cmd) Run() error {
	if err := c.Start(); err != nil {
		return err
	}
	return c.Wait()
}

// CombinedOutput runs the command and returns its combined standard
// output and standard error.
func (c *Cmd) CombinedOutput() ([]byte, error) {
	if c.Stdout != nil || c.Stderr != nil {
		return nil, errors.New("executil: Stdout or Stderr already set")
	}
	var b bytes.Buffer
	c.Stdout = &b
	c.Stderr = &b
	err := c.Run()
	return b.Bytes(), err
}

// Start starts the specified command but does not wait for it to complete.
func (c *Cmd) Start() error {
	select {
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
	}

	if err := c.Cmd.Start(); err != nil {
		return err
	}
	go func() {
		select {
		case <-c.ctx.Done():
			err := syscall.Kill(-c.Process.Pid, syscall.SIGKILL)
			if err != nil {
				log.Print("[Error] " + err.Error())
			}
		case <-c.waitDone:
		}
	}()
	return nil
}

// Wait waits for the command to exit.
func (c *Cmd) Wait() error {
	defer close(c.waitDone)
	return c.Cmd.Wait()
}

// ExitCode returns the exit status carried by err.
//
// It returns 0 for a nil error and -1 when err is not an exit error
// (the process could not be started, or was killed by a signal).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := errors.Cause(err).(*exec.ExitError); ok {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			return status.ExitStatus()
		}
	}
	return -1
}
