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

package pathutil

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	t.Parallel()
	home, err := homedir.Dir()
	require.NoError(t, err)
	env := map[string]string{"USER": "jdoe", "SLURM_JOB_ID": "12345"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"TestNoVars", "/checkpoint/static", "/checkpoint/static"},
		{"TestVar", "/checkpoint/$USER", "/checkpoint/jdoe"},
		{"TestBracedVar", "/checkpoint/${USER}/${SLURM_JOB_ID}", "/checkpoint/jdoe/12345"},
		{"TestUnknownVar", "/checkpoint/$NOPE/x", "/checkpoint//x"},
		{"TestHome", "~/outputs", filepath.Join(home, "outputs")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.in, lookup)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTouchAndExists(t *testing.T) {
	t.Parallel()
	dir, err := ioutil.TempDir("", "pathutil")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	marker := filepath.Join(dir, "DELAYPURGE")
	exists, err := Exists(marker)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, Touch(marker))
	// Touching twice is not an error
	require.NoError(t, Touch(marker))

	exists, err = Exists(marker)
	require.NoError(t, err)
	assert.True(t, exists)
}
