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

package pathutil

import (
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// LookupFunc retrieves the value of an environment variable
type LookupFunc func(key string) (string, bool)

// Expand replaces ${var} or $var in the path using lookup, then expands a leading ~.
//
// Unknown variables are replaced by an empty string as a shell would do.
func Expand(p string, lookup LookupFunc) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	expanded := os.Expand(p, func(key string) string {
		v, _ := lookup(key)
		return v
	})
	res, err := homedir.Expand(expanded)
	if err != nil {
		return "", errors.Wrapf(err, "failed to expand path:%q", p)
	}
	return res, nil
}

// Exists returns true if the given path exists
func Exists(p string) (bool, error) {
	_, err := os.Stat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "failed to stat path:%q", p)
}

// Touch creates the file if it does not exist, or updates its modification time
func Touch(p string) error {
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to create file:%q", p)
	}
	return f.Close()
}
