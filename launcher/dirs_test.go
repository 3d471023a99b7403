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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareDirectories(t *testing.T) {
	t.Parallel()
	root, err := ioutil.TempDir("", "launcher-dirs")
	require.NoError(t, err)
	defer os.RemoveAll(root)

	existing := filepath.Join(root, "existing-output")
	require.NoError(t, os.MkdirAll(existing, 0755))

	tests := []struct {
		name   string
		params JobParams
		marker string
	}{
		{"CreatesMissingDirectories", JobParams{OutputPath: filepath.Join(root, "a", "out"), CheckPath: filepath.Join(root, "ckpt", "12345")}, "DELAYPURGE"},
		{"OutputAlreadyExists", JobParams{OutputPath: existing, CheckPath: filepath.Join(root, "ckpt", "12346")}, "DELAYPURGE"},
		{"NoMarker", JobParams{OutputPath: filepath.Join(root, "b"), CheckPath: filepath.Join(root, "ckpt", "12347")}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, PrepareDirectories(tt.params, tt.marker))
			// Running twice must not fail
			require.NoError(t, PrepareDirectories(tt.params, tt.marker))
			for _, d := range []string{tt.params.OutputPath, tt.params.CheckPath} {
				fi, err := os.Stat(d)
				require.NoError(t, err)
				assert.True(t, fi.IsDir())
			}
			_, err := os.Stat(filepath.Join(tt.params.CheckPath, "DELAYPURGE"))
			assert.Equal(t, tt.marker == "", os.IsNotExist(err))
		})
	}
}

func TestPrepareDirectoriesFailure(t *testing.T) {
	t.Parallel()
	root, err := ioutil.TempDir("", "launcher-dirs")
	require.NoError(t, err)
	defer os.RemoveAll(root)

	// A regular file prevents the creation of a directory with the same name
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, ioutil.WriteFile(blocker, []byte("x"), 0644))

	err = PrepareDirectories(JobParams{OutputPath: filepath.Join(blocker, "out"), CheckPath: filepath.Join(root, "ckpt")}, "")
	assert.Error(t, err)
}

func TestManifestWriteAndRead(t *testing.T) {
	t.Parallel()
	dir, err := ioutil.TempDir("", "launcher-manifest")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	cmd := Command{Name: "python", Args: []string{"train2.py", "--actfun", "combinact"}, Env: []string{"OMP_NUM_THREADS=1"}}
	m := NewManifest(trainParams(), cmd)
	p, err := m.Write(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "launch_12345_7.yaml"), p)

	got, err := ReadManifest(p)
	require.NoError(t, err)
	assert.Equal(t, ProfileTrain, got.Profile)
	assert.Equal(t, "12345", got.JobID)
	assert.Equal(t, "7", got.Seed)
	assert.Equal(t, "combinact", got.Actfun)
	assert.Equal(t, "/checkpoint/jdoe/12345", got.CheckPath)
	assert.Equal(t, []string{"python", "train2.py", "--actfun", "combinact"}, got.Command)
	assert.Equal(t, []string{"OMP_NUM_THREADS=1"}, got.Env)
	assert.True(t, m.LaunchedAt.Equal(got.LaunchedAt))
}
