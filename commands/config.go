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

package commands

import (
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/ystia/slurmtrain/config"
	"github.com/ystia/slurmtrain/helper/stringutil"
	"github.com/ystia/slurmtrain/log"
)

var cfgFile string

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// enable ability to specify config file via flag
		viper.SetConfigFile(cfgFile)
	}
	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Debugln("Using config file:", viper.ConfigFileUsed())
	} else {
		log.Debugln("Config not found... ")
	}
}

func setConfig() {
	//Environment Variables
	viper.SetEnvPrefix("slurmtrain") // will be uppercased automatically - Become "SLURMTRAIN_"
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	//Setting Defaults
	viper.SetDefault("launcher.python", config.DefaultPython)
	viper.SetDefault("launcher.train_script", config.DefaultTrainScript)
	viper.SetDefault("launcher.distributed_launcher", config.DefaultDistributedLauncher)
	viper.SetDefault("launcher.distributed", false)
	viper.SetDefault("launcher.nproc_per_node", config.DefaultNProcPerNode)
	viper.SetDefault("launcher.output_dir", config.DefaultOutputDir)
	viper.SetDefault("launcher.checkpoint_root", config.DefaultCheckpointRoot)
	viper.SetDefault("launcher.purge_marker", config.DefaultPurgeMarker)
	viper.SetDefault("launcher.default_seed", config.DefaultSeed)
	viper.SetDefault("launcher.probe_packages", config.DefaultProbePackages)
	viper.SetDefault("launcher.probe_timeout", config.DefaultProbeTimeout)
	viper.SetDefault("launcher.min_python_version", config.DefaultMinPythonVersion)

	viper.SetDefault("training.data", "")
	viper.SetDefault("training.model", "")
	viper.SetDefault("training.batch_size", 0)
	viper.SetDefault("training.epochs", 0)
	viper.SetDefault("training.workers", 0)

	viper.SetDefault("slurm.nodes", 1)
	viper.SetDefault("slurm.sweep_max_parallel", config.DefaultSweepMaxParallel)
	viper.SetDefault("slurm.launcher_bin", config.DefaultLauncherBin)

	viper.SetDefault("ssh.port", config.DefaultSSHPort)
	viper.SetDefault("ssh.private_key", "~/.ssh/id_rsa")

	//Configuration file directories
	viper.SetConfigName("config.slurmtrain") // name of config file (without extension)
	viper.AddConfigPath("/etc/slurmtrain/")
	viper.AddConfigPath(".")
}

func getConfig() config.Configuration {
	configuration := config.Configuration{}
	configuration.Debug = viper.GetBool("debug")
	configuration.LogFile = viper.GetString("log_file")

	configuration.Launcher.Python = viper.GetString("launcher.python")
	configuration.Launcher.TrainScript = viper.GetString("launcher.train_script")
	configuration.Launcher.DistributedLauncher = viper.GetString("launcher.distributed_launcher")
	configuration.Launcher.Distributed = viper.GetBool("launcher.distributed")
	configuration.Launcher.NProcPerNode = viper.GetInt("launcher.nproc_per_node")
	configuration.Launcher.OutputDir = viper.GetString("launcher.output_dir")
	configuration.Launcher.CheckpointRoot = viper.GetString("launcher.checkpoint_root")
	configuration.Launcher.PurgeMarker = viper.GetString("launcher.purge_marker")
	configuration.Launcher.DefaultSeed = viper.GetInt("launcher.default_seed")
	configuration.Launcher.ProbePackages = getStringSlice("launcher.probe_packages")
	configuration.Launcher.ProbeTimeout = viper.GetDuration("launcher.probe_timeout")
	configuration.Launcher.MinPythonVersion = viper.GetString("launcher.min_python_version")
	configuration.Launcher.ExtraEnv = getEnvList("launcher.extra_env")

	configuration.Training.Data = viper.GetString("training.data")
	configuration.Training.Model = viper.GetString("training.model")
	configuration.Training.BatchSize = viper.GetInt("training.batch_size")
	configuration.Training.Epochs = viper.GetInt("training.epochs")
	configuration.Training.Workers = viper.GetInt("training.workers")
	configuration.Training.ExtraArgs = viper.GetStringSlice("training.extra_args")

	configuration.Slurm.JobName = viper.GetString("slurm.job_name")
	configuration.Slurm.Partition = viper.GetString("slurm.partition")
	configuration.Slurm.QOS = viper.GetString("slurm.qos")
	configuration.Slurm.GPUs = viper.GetInt("slurm.gpus")
	configuration.Slurm.CPUsPerTask = viper.GetInt("slurm.cpus_per_task")
	configuration.Slurm.Mem = viper.GetString("slurm.mem")
	configuration.Slurm.Time = viper.GetString("slurm.time")
	configuration.Slurm.Nodes = viper.GetInt("slurm.nodes")
	configuration.Slurm.Array = viper.GetString("slurm.array")
	configuration.Slurm.Output = viper.GetString("slurm.output")
	configuration.Slurm.Error = viper.GetString("slurm.error")
	configuration.Slurm.WorkingDir = viper.GetString("slurm.working_dir")
	configuration.Slurm.Extra = getDynamicMap("slurm.extra")
	configuration.Slurm.SweepMaxParallel = viper.GetInt("slurm.sweep_max_parallel")
	configuration.Slurm.LauncherBin = viper.GetString("slurm.launcher_bin")

	configuration.SSH.Host = viper.GetString("ssh.host")
	configuration.SSH.Port = viper.GetInt("ssh.port")
	configuration.SSH.User = viper.GetString("ssh.user")
	configuration.SSH.PrivateKey = viper.GetString("ssh.private_key")

	configuration.Telemetry.StatsdAddress = viper.GetString("telemetry.statsd_address")
	configuration.Telemetry.ServiceName = viper.GetString("telemetry.service_name")
	return configuration
}

// getStringSlice flattens comma separated items.
// Cobra and env variables give a slice with only one element containing comma separated values.
func getStringSlice(key string) []string {
	var res []string
	for _, item := range viper.GetStringSlice(key) {
		res = append(res, stringutil.SplitNonEmpty(item, ",")...)
	}
	return res
}

// getEnvList reads a list of KEY=VALUE items.
// Config file map keys are lowercased by viper, a list keeps environment variable names as written.
func getEnvList(key string) config.DynamicMap {
	var res config.DynamicMap
	for _, item := range viper.GetStringSlice(key) {
		k, v, ok := stringutil.ParseKeyValue(item)
		if !ok {
			log.Warnf("ignoring %s item %q, expecting KEY=VALUE", key, item)
			continue
		}
		if res == nil {
			res = make(config.DynamicMap)
		}
		res[k] = v
	}
	return res
}

func getDynamicMap(key string) config.DynamicMap {
	m := cast.ToStringMap(viper.Get(key))
	if len(m) == 0 {
		return nil
	}
	return config.DynamicMap(m)
}
