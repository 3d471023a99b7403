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
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/AlecAivazis/survey.v1"

	"github.com/ystia/slurmtrain/slurm"
)

var assumeYes bool

var cancelCmd = &cobra.Command{
	Use:   "cancel <job_id>...",
	Short: "Cancel SLURM jobs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if !assumeYes {
			confirmed := false
			prompt := &survey.Confirm{
				Message: fmt.Sprintf("Cancel job(s) %s?", strings.Join(args, ", ")),
			}
			if err := survey.AskOne(prompt, &confirmed, nil); err != nil {
				return errors.Wrap(err, "failed to read confirmation")
			}
			if !confirmed {
				fmt.Println("Nothing cancelled")
				return nil
			}
		}
		runner, err := slurm.NewRunner(cfg.SSH)
		if err != nil {
			return err
		}
		return cancelJobs(context.Background(), runner, args)
	},
}

func init() {
	cancelCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	RootCmd.AddCommand(cancelCmd)
}

func cancelJobs(ctx context.Context, runner slurm.Runner, jobIDs []string) error {
	var errs *multierror.Error
	for _, id := range jobIDs {
		if err := slurm.Cancel(ctx, runner, id); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}
