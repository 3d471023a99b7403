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
	"strconv"

	"github.com/kballard/go-shellquote"

	"github.com/ystia/slurmtrain/config"
)

// Command is an external program invocation
type Command struct {
	Name string
	Args []string
	// Env holds "KEY=value" entries added to the inherited environment
	Env []string
}

// String returns the command line quoted for a POSIX shell
func (c Command) String() string {
	return shellquote.Join(append([]string{c.Name}, c.Args...)...)
}

// BuildCommand returns the invocation of the training program for the given parameters.
//
// In distributed mode the flags are given to the distributed launcher right after the
// number of workers to spawn on the node. Otherwise the interpreter runs the training
// script directly.
func BuildCommand(cfg config.Configuration, p JobParams) Command {
	flags := trainingFlags(cfg.Training, p)

	var cmd Command
	if cfg.Launcher.Distributed {
		cmd.Name = cfg.Launcher.DistributedLauncher
		cmd.Args = append([]string{strconv.Itoa(cfg.Launcher.NProcPerNode)}, flags...)
	} else {
		cmd.Name = cfg.Launcher.Python
		cmd.Args = append([]string{cfg.Launcher.TrainScript}, flags...)
	}
	for _, k := range cfg.Launcher.ExtraEnv.Keys() {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, cfg.Launcher.ExtraEnv.GetString(k)))
	}
	return cmd
}

func trainingFlags(t config.Training, p JobParams) []string {
	var flags []string
	add := func(name, value string) {
		flags = append(flags, name, value)
	}
	add("--data", t.Data)
	add("--model", t.Model)
	add("--batch-size", strconv.Itoa(t.BatchSize))

	switch p.Profile {
	case ProfileValidate:
		add("--load-path", p.SavePath)
		add("--seed", p.Seed)
		add("--output", p.OutputPath)
		add("--check-path", p.CheckPath)
	default:
		add("--epochs", strconv.Itoa(t.Epochs))
		add("--actfun", p.Actfun)
		add("--lr", p.LR)
		add("--seed", p.Seed)
		add("--output", p.OutputPath)
		add("--check-path", p.CheckPath)
		add("--control-amp", p.Amp)
		add("--extra-channel-mult", p.WidthMult)
	}
	add("--workers", strconv.Itoa(t.Workers))
	return append(flags, t.ExtraArgs...)
}
