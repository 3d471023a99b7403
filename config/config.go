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

package config

import (
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// DefaultPython is the default interpreter used to run the training script
const DefaultPython = "python"

// DefaultTrainScript is the default training/validation entry point
const DefaultTrainScript = "train2.py"

// DefaultDistributedLauncher is the default helper used to fan out training workers on a node
const DefaultDistributedLauncher = "./distributed_train.sh"

// DefaultNProcPerNode is the default number of workers spawned by the distributed helper
const DefaultNProcPerNode int = 8

// DefaultSeed is used when the job is not part of a job array
const DefaultSeed int = 42

// DefaultOutputDir is the default artifacts directory template
const DefaultOutputDir = "./output"

// DefaultCheckpointRoot is the default checkpoints root, a job id is appended to it
const DefaultCheckpointRoot = "/checkpoint/$USER"

// DefaultPurgeMarker is the file touched into the checkpoint directory
const DefaultPurgeMarker = "DELAYPURGE"

// DefaultMinPythonVersion is the lowest interpreter version accepted without warning
const DefaultMinPythonVersion = "3.6"

// DefaultSweepMaxParallel is the default number of concurrent sbatch submissions
const DefaultSweepMaxParallel int = 4

// DefaultLauncherBin is the command re-entering the launcher from generated batch scripts
const DefaultLauncherBin = "slurmtrain"

// DefaultSSHPort is the default port of the SLURM login node
const DefaultSSHPort int = 22

// DefaultProbeTimeout bounds each diagnostic probe
const DefaultProbeTimeout = 30 * time.Second

// DefaultProbePackages are the Python packages whose version is printed before a run
var DefaultProbePackages = []string{"torch", "torchvision", "timm", "numpy"}

// Configuration holds the whole slurmtrain configuration
type Configuration struct {
	Launcher  Launcher
	Training  Training
	Slurm     Slurm
	SSH       SSH
	Telemetry Telemetry
	LogFile   string
	Debug     bool
}

// Launcher configures how the external training program is started
type Launcher struct {
	Python              string
	TrainScript         string
	DistributedLauncher string
	Distributed         bool
	NProcPerNode        int
	OutputDir           string
	CheckpointRoot      string
	PurgeMarker         string
	DefaultSeed         int
	ProbePackages       []string
	ProbeTimeout        time.Duration
	MinPythonVersion    string
	ExtraEnv            DynamicMap
}

// Training holds the fixed part of the flags forwarded to the training program
type Training struct {
	Data      string
	Model     string
	BatchSize int
	Epochs    int
	Workers   int
	ExtraArgs []string
}

// Slurm holds default resource requests of generated batch scripts
type Slurm struct {
	JobName          string
	Partition        string
	QOS              string
	GPUs             int
	CPUsPerTask      int
	Mem              string
	Time             string
	Nodes            int
	Array            string
	Output           string
	Error            string
	WorkingDir       string
	Extra            DynamicMap
	SweepMaxParallel int
	LauncherBin      string
}

// SSH configures the connection to a remote SLURM login node.
// An empty Host means that SLURM commands are run locally.
type SSH struct {
	Host       string
	Port       int
	User       string
	PrivateKey string
}

// Telemetry holds the configuration for the telemetry service
type Telemetry struct {
	StatsdAddress string
	ServiceName   string
}

// DynamicMap allows to store free-form configuration settings
type DynamicMap map[string]interface{}

// Keys returns the map keys sorted
func (dm DynamicMap) Keys() []string {
	keys := make([]string, 0, len(dm))
	for k := range dm {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsSet checks if a given configuration key is defined
func (dm DynamicMap) IsSet(name string) bool {
	_, ok := dm[name]
	return ok
}

// Get returns the raw value of a given configuration key
func (dm DynamicMap) Get(name string) interface{} {
	return dm[name]
}

// GetString returns the value of the given key casted into a string.
// An empty string is returned if not found.
func (dm DynamicMap) GetString(name string) string {
	return cast.ToString(dm[name])
}

// GetStringOrDefault returns the value of the given key casted into a string.
// The given default value is returned if not found or not a valid string.
func (dm DynamicMap) GetStringOrDefault(name, defaultValue string) string {
	if !dm.IsSet(name) {
		return defaultValue
	}
	if res, err := cast.ToStringE(dm[name]); err == nil {
		return res
	}
	return defaultValue
}

// GetBool returns the value of the given key casted into a boolean.
// False is returned if not found.
func (dm DynamicMap) GetBool(name string) bool {
	return cast.ToBool(dm[name])
}

// GetStringSlice returns the value of the given key casted into a slice of string.
// A comma separated string is split.
func (dm DynamicMap) GetStringSlice(name string) []string {
	val := dm[name]
	switch v := val.(type) {
	case string:
		return strings.Split(v, ",")
	default:
		return cast.ToStringSlice(dm[name])
	}
}

// GetInt returns the value of the given key casted into an int.
// 0 is returned if not found.
func (dm DynamicMap) GetInt(name string) int {
	return cast.ToInt(dm[name])
}

// GetDuration returns the value of the given key casted into a Duration.
// A 0 duration is returned if not found.
func (dm DynamicMap) GetDuration(name string) time.Duration {
	return cast.ToDuration(dm[name])
}
