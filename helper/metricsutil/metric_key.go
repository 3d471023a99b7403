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

package metricsutil

import (
	"strings"
)

// . is the statsd separator, _ is the prometheus separator, / is not allowed by prometheus | and : are reserved separators for statsd
var keyReplacer = strings.NewReplacer("/", "-", ".", "-", "_", "-", "|", "-", ":", "-", " ", "-")

// CleanupMetricKey replaces characters that are reserved by metrics sinks in each part of a metric key.
//
// Parts coming from users (activation names, partitions) may contain any of them.
func CleanupMetricKey(key ...string) []string {
	res := make([]string, len(key))
	for i, keyPart := range key {
		res[i] = keyReplacer.Replace(keyPart)
	}
	return res
}
