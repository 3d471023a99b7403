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
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Manifest records how a training program was launched
type Manifest struct {
	Profile    Profile   `yaml:"profile"`
	JobID      string    `yaml:"job_id"`
	NodeID     string    `yaml:"node_id,omitempty"`
	Seed       string    `yaml:"seed"`
	Actfun     string    `yaml:"actfun,omitempty"`
	LR         string    `yaml:"lr,omitempty"`
	Amp        string    `yaml:"amp,omitempty"`
	WidthMult  string    `yaml:"width_mult,omitempty"`
	SavePath   string    `yaml:"save_path,omitempty"`
	OutputPath string    `yaml:"output"`
	CheckPath  string    `yaml:"check_path"`
	Hostname   string    `yaml:"hostname,omitempty"`
	Command    []string  `yaml:"command"`
	Env        []string  `yaml:"env,omitempty"`
	LaunchedAt time.Time `yaml:"launched_at"`
}

// NewManifest returns the Manifest of the given launch
func NewManifest(p JobParams, cmd Command) Manifest {
	hostname, _ := os.Hostname()
	return Manifest{
		Profile:    p.Profile,
		JobID:      p.JobID,
		NodeID:     p.NodeID,
		Seed:       p.Seed,
		Actfun:     p.Actfun,
		LR:         p.LR,
		Amp:        p.Amp,
		WidthMult:  p.WidthMult,
		SavePath:   p.SavePath,
		OutputPath: p.OutputPath,
		CheckPath:  p.CheckPath,
		Hostname:   hostname,
		Command:    append([]string{cmd.Name}, cmd.Args...),
		Env:        cmd.Env,
		LaunchedAt: time.Now().UTC(),
	}
}

// FileName returns the manifest file name, unique per job and seed
func (m Manifest) FileName() string {
	return fmt.Sprintf("launch_%s_%s.yaml", m.JobID, m.Seed)
}

// Write stores the manifest in the given directory and returns its path
func (m Manifest) Write(dir string) (string, error) {
	b, err := yaml.Marshal(m)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal launch manifest")
	}
	p := filepath.Join(dir, m.FileName())
	if err := ioutil.WriteFile(p, b, 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write launch manifest %q", p)
	}
	return p, nil
}

// ReadManifest loads a manifest written by Write
func ReadManifest(p string) (Manifest, error) {
	var m Manifest
	b, err := ioutil.ReadFile(p)
	if err != nil {
		return m, errors.Wrapf(err, "failed to read launch manifest %q", p)
	}
	err = yaml.Unmarshal(b, &m)
	return m, errors.Wrapf(err, "failed to parse launch manifest %q", p)
}
