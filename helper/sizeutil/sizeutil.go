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

package sizeutil

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// ConvertToGB converts a memory size into a number of gigabytes rounded up.
//
// A bare integer is a number of megabytes, as SLURM assumes for --mem.
// Anything else is parsed as a human readable size ("64GB", "1 TiB").
func ConvertToGB(size string) (int, error) {
	size = strings.TrimSpace(size)
	if mSize, err := strconv.Atoi(size); err == nil {
		return int(math.Ceil(float64(mSize) / 1000)), nil
	}
	bsize, err := humanize.ParseBytes(size)
	if err != nil {
		return 0, errors.Errorf("Can't convert size to bytes value: %v", err)
	}
	return int(math.Ceil(float64(bsize) / humanize.GByte)), nil
}

// SlurmMem returns the --mem value for the given size, or an empty string for an empty size
func SlurmMem(size string) (string, error) {
	if strings.TrimSpace(size) == "" {
		return "", nil
	}
	gb, err := ConvertToGB(size)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(gb) + "G", nil
}
