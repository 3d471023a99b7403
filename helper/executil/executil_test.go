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
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandCombinedOutput(t *testing.T) {
	t.Parallel()
	out, err := Command(context.Background(), "sh", "-c", "echo out; echo err >&2").CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(out), "out")
	assert.Contains(t, string(out), "err")
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	err := Command(context.Background(), "sh", "-c", "exit 3").Run()
	require.Error(t, err)
	assert.Equal(t, 3, ExitCode(err))
	assert.Equal(t, 3, ExitCode(errors.Wrap(err, "wrapped")))
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, -1, ExitCode(errors.New("not an exit error")))
}

func TestCommandCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := Command(ctx, "sh", "-c", "sleep 10").Run()
	require.Error(t, err)
	assert.True(t, time.Since(start) < 5*time.Second, "process group should have been killed")
}

func TestCommandAlreadyCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Command(ctx, "true").Run()
	assert.Equal(t, context.Canceled, err)
}
