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

// Package commands holds the slurmtrain command line interface.
package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ystia/slurmtrain/config"
	"github.com/ystia/slurmtrain/helper/pathutil"
	"github.com/ystia/slurmtrain/log"
	"github.com/ystia/slurmtrain/telemetry"
)

// RootCmd is the root of slurmtrain commands tree
var RootCmd = &cobra.Command{
	Use:   "slurmtrain",
	Short: "Launches training jobs on SLURM clusters",
	Long: `slurmtrain starts the training program of a SLURM job with deterministic flags.
It also generates, submits, monitors and cancels the batch jobs running it.
`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("debug") {
			log.SetDebug(true)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		err := cmd.Help()
		if err != nil {
			fmt.Print(err)
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is /etc/slurmtrain/config.slurmtrain.yaml)")
	RootCmd.PersistentFlags().Bool("debug", false, "Enable debug logs")
	RootCmd.PersistentFlags().String("log_file", "", "Duplicate logs into this file, rotated at 100MB")
	viper.BindPFlag("debug", RootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("log_file", RootCmd.PersistentFlags().Lookup("log_file"))
	setConfig()
}

// setupAmbient opens the log file and installs the metrics sinks
func setupAmbient(cfg config.Configuration) (io.Closer, error) {
	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		p, err := pathutil.Expand(cfg.LogFile, nil)
		if err != nil {
			return nil, err
		}
		closer = log.SetOutputFile(p, 100, 3)
	}
	if _, err := telemetry.Setup(cfg.Telemetry); err != nil {
		closer.Close()
		return nil, err
	}
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
