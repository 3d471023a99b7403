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

package sshutil

import (
	"context"
	"sync"
)

// MockSSHClient allows to mock an SSH client
type MockSSHClient struct {
	MockRunCommand func(string) (string, error)

	mu       sync.Mutex
	commands []string
}

// RunCommand records the command and calls MockRunCommand if defined
func (s *MockSSHClient) RunCommand(ctx context.Context, cmd string) (string, error) {
	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	s.mu.Unlock()
	if s.MockRunCommand != nil {
		return s.MockRunCommand(cmd)
	}
	return "", nil
}

// Commands returns the commands received so far
func (s *MockSSHClient) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]string, len(s.commands))
	copy(res, s.commands)
	return res
}
