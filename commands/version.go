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
	"runtime"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X github.com/ystia/slurmtrain/commands.Version=..."
var Version = "0.1.0-dev"

// GitCommit is set at build time
var GitCommit = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Long:  `The version of slurmtrain`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(versionString())
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}

func versionString() string {
	v := fmt.Sprintf("slurmtrain v%s\n", Version)
	if GitCommit != "" {
		v += fmt.Sprintf("Revision: %q\n", GitCommit)
	}
	v += fmt.Sprintf("Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return v
}
