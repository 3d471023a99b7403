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
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProber struct {
	outputs map[string]string
}

func (m *mockProber) Probe(ctx context.Context, name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	if out, ok := m.outputs[key]; ok {
		return out, nil
	}
	return "ModuleNotFoundError", errors.New("exit status 1")
}

func TestDiagnosticsReport(t *testing.T) {
	t.Parallel()
	d := &Diagnostics{
		Python:           "python3",
		Packages:         []string{"torch", "timm", "numpy"},
		MinPythonVersion: "3.6",
		Prober: &mockProber{outputs: map[string]string{
			"python3 --version": "Python 3.8.5",
			"python3 -c import torch; print(torch.__version__)": "1.7.0+cu110",
			"python3 -c import numpy; print(numpy.__version__)": "UserWarning: something\n1.19.2",
		}},
		HostInfo: func() []string { return []string{"Host: node042"} },
		Lookup:   envLookup(map[string]string{"CUDA_VISIBLE_DEVICES": "0,1,2,3"}),
	}
	buf := new(bytes.Buffer)
	require.NoError(t, d.Report(context.Background(), buf))
	assert.Equal(t, `Python: 3.8.5
torch: 1.7.0+cu110
timm: unavailable
numpy: 1.19.2
Host: node042
CUDA_VISIBLE_DEVICES: 0,1,2,3
`, buf.String())
}

func TestDiagnosticsReportWithoutInterpreter(t *testing.T) {
	t.Parallel()
	d := &Diagnostics{
		Python:   "python3",
		Packages: []string{"torch"},
		Prober:   &mockProber{},
		Lookup:   envLookup(nil),
	}
	buf := new(bytes.Buffer)
	require.NoError(t, d.Report(context.Background(), buf))
	assert.Equal(t, "Python: unavailable\ntorch: unavailable\nCUDA_VISIBLE_DEVICES: unset\n", buf.String())
}

func TestDiagnosticsReportCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &Diagnostics{Python: "python3", Packages: []string{"torch"}, Prober: &mockProber{}}
	assert.Error(t, d.Report(ctx, new(bytes.Buffer)))
}

func TestDiagnosticsReportKeepsReportedVersion(t *testing.T) {
	t.Parallel()
	d := &Diagnostics{
		Python:           "python3",
		MinPythonVersion: "3.6",
		Prober:           &mockProber{outputs: map[string]string{"python3 --version": "Python 3.10.0rc1"}},
	}
	buf := new(bytes.Buffer)
	require.NoError(t, d.Report(context.Background(), buf))
	assert.Equal(t, "Python: 3.10.0rc1\n", buf.String())
}

func TestDiagnosticsReportCancelledWithoutPackages(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &Diagnostics{Python: "python3", Prober: &mockProber{}}
	buf := new(bytes.Buffer)
	assert.Error(t, d.Report(ctx, buf))
	assert.Empty(t, buf.String())
}

func TestParsePythonVersion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		out     string
		want    string
		wantErr bool
	}{
		{"Python3", "Python 3.8.5", "3.8.5", false},
		{"Python2OnStderr", "Python 2.7.18\n", "2.7.18", false},
		{"ReleaseCandidate", "Python 3.10.0rc1", "3.10.0rc1", false},
		{"Garbage", "command not found", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, v, err := ParsePythonVersion(tt.out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, raw)
			require.NotNil(t, v)
		})
	}
}

func TestHostInfo(t *testing.T) {
	t.Parallel()
	lines := hostInfo()
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Host: "))
	assert.True(t, strings.HasPrefix(lines[1], "CPU: "))
	assert.True(t, strings.HasPrefix(lines[2], "Memory: "))
}
