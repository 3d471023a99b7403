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

package log

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugSwitch(t *testing.T) {
	buf := new(bytes.Buffer)
	SetOutput(buf)
	defer SetOutput(os.Stderr)
	defer SetDebug(IsDebug())

	SetDebug(false)
	Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetDebug(true)
	Debugf("shown %d", 2)
	assert.Contains(t, buf.String(), "[DEBUG] shown 2")

	buf.Reset()
	Printf("job %s", "12345")
	assert.Contains(t, buf.String(), "[INFO]  job 12345")
}

func TestSetPrefix(t *testing.T) {
	buf := new(bytes.Buffer)
	SetOutput(buf)
	defer SetOutput(os.Stderr)
	SetPrefix("[job 12345 node 1] ")
	defer SetPrefix("")

	Printf("started")
	assert.True(t, strings.HasPrefix(buf.String(), "[job 12345 node 1] "), buf.String())
	assert.Contains(t, buf.String(), "[INFO]  started")
}

func TestSetOutputFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "slurmtrain-log")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	logFile := filepath.Join(dir, "launcher.log")
	closer := SetOutputFile(logFile, 1, 1)
	Printf("written to %s", "file")
	require.NoError(t, closer.Close())
	SetOutput(os.Stderr)

	content, err := ioutil.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "written to file")
}
