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
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ystia/slurmtrain/config"
	"github.com/ystia/slurmtrain/helper/stringutil"
	"github.com/ystia/slurmtrain/launcher"
	"github.com/ystia/slurmtrain/slurm"
)

var (
	jobEnv       []string
	scriptOutput string
)

var sbatchCmd = &cobra.Command{
	Use:   "sbatch <train|validate> <args...>",
	Short: "Print the batch script running a launch",
	Long: `Print the batch script running "slurmtrain launch" with the given profile and
positional arguments. Resource requests come from the slurm configuration section.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		spec, err := jobSpecFromArgs(cfg, args)
		if err != nil {
			return err
		}
		script, err := slurm.BatchScript(spec)
		if err != nil {
			return err
		}
		if scriptOutput == "" {
			fmt.Print(script)
			return nil
		}
		return errors.Wrapf(ioutil.WriteFile(scriptOutput, []byte(script), 0755), "failed to write batch script %q", scriptOutput)
	},
}

func init() {
	addJobFlags(sbatchCmd)
	sbatchCmd.Flags().StringVarP(&scriptOutput, "output", "o", "", "Write the script into this file instead of stdout")
	RootCmd.AddCommand(sbatchCmd)
}

// addJobFlags adds the resource request flags shared by the commands generating batch scripts
func addJobFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("job_name", "", "SLURM job name")
	flags.String("partition", "", "SLURM partition")
	flags.Int("gpus", 0, "Number of GPUs per node")
	flags.String("mem", "", "Memory per node, in MB or with a unit like 64GB")
	flags.String("time", "", "Time limit of the job")
	flags.String("array", "", "Job array indexes, each task gets its own seed")
	flags.StringArrayVar(&jobEnv, "env", nil, "Environment variable exported by the batch script, as KEY=VALUE (repeatable)")

	// Flags are bound when the command runs as several commands share the same keys
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		for key, flag := range map[string]string{
			"slurm.job_name":  "job_name",
			"slurm.partition": "partition",
			"slurm.gpus":      "gpus",
			"slurm.mem":       "mem",
			"slurm.time":      "time",
			"slurm.array":     "array",
		} {
			if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return errors.Wrapf(err, "failed to bind flag %q", flag)
			}
		}
		return nil
	}
}

func launchCommandLine(cfg config.Configuration, profile launcher.Profile, args []string) []string {
	return append([]string{cfg.Slurm.LauncherBin, "launch", string(profile)}, args...)
}

func parseJobEnv(env []string) (config.DynamicMap, error) {
	if len(env) == 0 {
		return nil, nil
	}
	res := make(config.DynamicMap, len(env))
	for _, e := range env {
		k, v, ok := stringutil.ParseKeyValue(e)
		if !ok {
			return nil, errors.Errorf("invalid environment variable %q, expecting KEY=VALUE", e)
		}
		res[k] = v
	}
	return res, nil
}

// jobSpecFromArgs builds the spec of a job launching args[0] profile with args[1:]
func jobSpecFromArgs(cfg config.Configuration, args []string) (slurm.JobSpec, error) {
	profile, err := launcher.ParseProfile(args[0])
	if err != nil {
		return slurm.JobSpec{}, err
	}
	if len(args)-1 != profile.Arity() {
		return slurm.JobSpec{}, errors.Errorf("profile %q expects %d positional arguments, got %d", profile, profile.Arity(), len(args)-1)
	}
	env, err := parseJobEnv(jobEnv)
	if err != nil {
		return slurm.JobSpec{}, err
	}
	spec := slurm.NewJobSpec(cfg.Slurm, launchCommandLine(cfg, profile, args[1:]))
	spec.Env = env
	if spec.Name == "" {
		spec.Name = string(profile)
		if profile == launcher.ProfileTrain {
			spec.Name = fmt.Sprintf("%s-%s", profile, args[1])
		}
	}
	return spec, nil
}
