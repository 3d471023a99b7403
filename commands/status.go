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

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/ystia/slurmtrain/helper/tabutil"
	"github.com/ystia/slurmtrain/slurm"
)

var noColor bool

var statusCmd = &cobra.Command{
	Use:   "status <job_id>...",
	Short: "Show the state of SLURM jobs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		runner, err := slurm.NewRunner(cfg.SSH)
		if err != nil {
			return err
		}
		if noColor {
			color.NoColor = true
		}
		table, err := statusTable(context.Background(), runner, args)
		fmt.Println(table.Render())
		return err
	},
}

func init() {
	statusCmd.Flags().BoolVar(&noColor, "no_color", false, "Disable coloring of job states")
	RootCmd.AddCommand(statusCmd)
}

func statusTable(ctx context.Context, runner slurm.Runner, jobIDs []string) (tabutil.Table, error) {
	var errs *multierror.Error
	table := tabutil.NewTable("Job ID", "Name", "State", "Reason", "Run Time")
	for _, id := range jobIDs {
		info, err := slurm.JobInfo(ctx, runner, id)
		if err != nil {
			if slurm.IsNoJobFoundError(err) {
				// the job is not found in slurm database (should have been purged)
				table.AddRow(id, "", colorizeState("UNKNOWN"), "", "")
				continue
			}
			errs = multierror.Append(errs, err)
			continue
		}
		table.AddRow(id, info["JobName"], colorizeState(info["JobState"]), info["Reason"], info["RunTime"])
	}
	return table, errs.ErrorOrNil()
}

func colorizeState(state string) string {
	switch {
	case state == "COMPLETED":
		return color.New(color.FgHiGreen, color.Bold).SprintFunc()(state)
	case slurm.IsActiveState(state):
		return color.New(color.FgHiYellow, color.Bold).SprintFunc()(state)
	case state == "UNKNOWN":
		return color.New(color.FgHiBlack).SprintFunc()(state)
	default:
		return color.New(color.FgHiRed, color.Bold).SprintFunc()(state)
	}
}
