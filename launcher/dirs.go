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
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ystia/slurmtrain/helper/pathutil"
	"github.com/ystia/slurmtrain/log"
)

// PrepareDirectories creates the output and checkpoint directories if needed.
//
// When marker is not empty, a file with this name is touched into the checkpoint
// directory; cluster purge policies skip directories holding it.
func PrepareDirectories(p JobParams, marker string) error {
	for _, dir := range []string{p.OutputPath, p.CheckPath} {
		if dir == "" {
			continue
		}
		log.Debugf("Creating directory %q", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create directory %q", dir)
		}
	}
	if marker == "" || p.CheckPath == "" {
		return nil
	}
	return pathutil.Touch(filepath.Join(p.CheckPath, marker))
}
