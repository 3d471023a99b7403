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
	"github.com/spf13/viper"

	"github.com/ystia/slurmtrain/launcher"
	"github.com/ystia/slurmtrain/log"
)

var skipDiagnostics bool

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Run the training program of the current SLURM job",
	Long: `Run the training program of the current SLURM job.

The job id, array task id and node id are read from the SLURM_JOB_ID,
SLURM_ARRAY_TASK_ID and SLURM_NODEID environment variables.
The exit status of the training program becomes the exit status of slurmtrain.`,
}

func init() {
	launchCmd.AddCommand(newLaunchProfileCmd(launcher.ProfileTrain, "<actfun> <lr> <amp> <width_mult>", "Train a model"))
	launchCmd.AddCommand(newLaunchProfileCmd(launcher.ProfileValidate, "<save_path>", "Validate a saved model"))

	flags := launchCmd.PersistentFlags()
	flags.String("python", "", "Python interpreter running the training script")
	flags.String("train_script", "", "Training entry point")
	flags.Bool("distributed", false, "Run the training through the distributed helper")
	flags.Int("nproc_per_node", 0, "Number of workers spawned by the distributed helper")
	flags.String("output_dir", "", "Directory receiving the run artifacts")
	flags.String("checkpoint_root", "", "Root of checkpoint directories, the job id is appended to it")
	flags.String("data", "", "Dataset forwarded as --data")
	flags.String("model", "", "Model architecture forwarded as --model")
	flags.Int("batch_size", 0, "Batch size forwarded as --batch-size")
	flags.Int("epochs", 0, "Number of epochs forwarded as --epochs")
	flags.Int("workers", 0, "Data loading workers forwarded as --workers")
	flags.BoolVar(&skipDiagnostics, "skip_diagnostics", false, "Do not print environment diagnostics before running")

	viper.BindPFlag("launcher.python", flags.Lookup("python"))
	viper.BindPFlag("launcher.train_script", flags.Lookup("train_script"))
	viper.BindPFlag("launcher.distributed", flags.Lookup("distributed"))
	viper.BindPFlag("launcher.nproc_per_node", flags.Lookup("nproc_per_node"))
	viper.BindPFlag("launcher.output_dir", flags.Lookup("output_dir"))
	viper.BindPFlag("launcher.checkpoint_root", flags.Lookup("checkpoint_root"))
	viper.BindPFlag("training.data", flags.Lookup("data"))
	viper.BindPFlag("training.model", flags.Lookup("model"))
	viper.BindPFlag("training.batch_size", flags.Lookup("batch_size"))
	viper.BindPFlag("training.epochs", flags.Lookup("epochs"))
	viper.BindPFlag("training.workers", flags.Lookup("workers"))

	RootCmd.AddCommand(launchCmd)
}

func newLaunchProfileCmd(profile launcher.Profile, usage, short string) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s %s", profile, usage),
		Short: short,
		Args:  cobra.ExactArgs(profile.Arity()),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(profile, args)
		},
	}
}

func runLaunch(profile launcher.Profile, args []string) error {
	cfg := getConfig()
	closer, err := setupAmbient(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	params, err := launcher.NewJobParams(cfg.Launcher, profile, args, os.LookupEnv)
	if err != nil {
		return errors.Wrap(err, "invalid launch parameters")
	}
	log.SetPrefix(jobLogPrefix(params))
	log.Debugf("Job parameters: %+v", params)

	l := launcher.New(cfg, params)
	if !skipDiagnostics {
		l.Diagnostics = launcher.NewDiagnostics(cfg.Launcher, os.LookupEnv)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return l.Run(ctx)
}

// jobLogPrefix tells apart the logs of the nodes and array tasks of a job sharing an output file
func jobLogPrefix(p launcher.JobParams) string {
	if p.NodeID == "" {
		return fmt.Sprintf("[job %s seed %s] ", p.JobID, p.Seed)
	}
	return fmt.Sprintf("[job %s seed %s node %s] ", p.JobID, p.Seed, p.NodeID)
}
