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

package stringutil

import (
	"strconv"
	"strings"
	"time"
)

// UniqueTimestampedName generates a time-stamped name for temporary file or directory by instance
func UniqueTimestampedName(prefix string, suffix string) string {
	return prefix + strconv.FormatInt(time.Now().UnixNano(), 10) + suffix
}

// ParseKeyValue splits a "key=value" string on its first '='.
//
// ok is false if there is no '=' or if the key is empty.
func ParseKeyValue(s string) (key, value string, ok bool) {
	idx := strings.IndexRune(s, '=')
	if idx <= 0 {
		return "", "", false
	}
	return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:]), true
}

// SplitNonEmpty splits s on sep and drops empty or blank items
func SplitNonEmpty(s, sep string) []string {
	res := make([]string, 0)
	for _, item := range strings.Split(s, sep) {
		if item = strings.TrimSpace(item); item != "" {
			res = append(res, item)
		}
	}
	return res
}
