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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ystia/slurmtrain/config"
	"github.com/ystia/slurmtrain/helper/stringutil"
	"github.com/ystia/slurmtrain/helper/tabutil"
	"github.com/ystia/slurmtrain/launcher"
	"github.com/ystia/slurmtrain/slurm"
)

var actfuns string

var submitCmd = &cobra.Command{
	Use:   "submit <train|validate> <args...>",
	Short: "Submit a launch as a SLURM batch job",
	Long: `Submit a launch as a SLURM batch job, locally or through SSH when ssh.host is configured.

With --actfuns one job is submitted per activation function and the actfun
positional argument is omitted:
  slurmtrain submit train --actfuns relu,swish,combinact 0.01 apex 1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		closer, err := setupAmbient(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()

		specs, err := submitSpecs(cfg, args, stringutil.SplitNonEmpty(actfuns, ","))
		if err != nil {
			return err
		}
		runner, err := slurm.NewRunner(cfg.SSH)
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		ids, err := slurm.NewSubmitter(runner).Sweep(ctx, specs, cfg.Slurm.SweepMaxParallel)
		if len(ids) > 0 {
			table := tabutil.NewTable("Job ID")
			for _, id := range ids {
				table.AddRow(id)
			}
			fmt.Println(table.Render())
		}
		fmt.Printf("%d/%d jobs submitted\n", len(ids), len(specs))
		return err
	},
}

func init() {
	addJobFlags(submitCmd)
	submitCmd.Flags().StringVar(&actfuns, "actfuns", "", "Comma separated activation functions, one train job is submitted per function")
	RootCmd.AddCommand(submitCmd)
}

func submitSpecs(cfg config.Configuration, args, sweep []string) ([]slurm.JobSpec, error) {
	if len(sweep) == 0 {
		spec, err := jobSpecFromArgs(cfg, args)
		if err != nil {
			return nil, err
		}
		return []slurm.JobSpec{spec}, nil
	}
	if args[0] != string(launcher.ProfileTrain) {
		return nil, errors.Errorf("--actfuns is only supported by the %q profile", launcher.ProfileTrain)
	}
	rest := args[1:]
	base, err := jobSpecFromArgs(cfg, append([]string{args[0], sweep[0]}, rest...))
	if err != nil {
		return nil, err
	}
	base.Name = cfg.Slurm.JobName
	if base.Name == "" {
		base.Name = string(launcher.ProfileTrain)
	}
	return slurm.SweepSpecs(base, sweep, func(actfun string) []string {
		return launchCommandLine(cfg, launcher.ProfileTrain, append([]string{actfun}, rest...))
	}), nil
}
