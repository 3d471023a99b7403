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
	"bytes"
	"context"
	"encoding/pem"
	"fmt"
	"io/ioutil"
	"net"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"

	"github.com/ystia/slurmtrain/log"
)

// Client is interface allowing running command
type Client interface {
	RunCommand(ctx context.Context, cmd string) (string, error)
}

// SSHClient is a client SSH
type SSHClient struct {
	Config *ssh.ClientConfig
	Host   string
	Port   int
}

// NewClient returns an SSHClient authenticating with the given private key (path or content)
func NewClient(user, host string, port int, privateKey string) (*SSHClient, error) {
	if host == "" {
		return nil, errors.New("ssh host is mandatory")
	}
	if user == "" {
		return nil, errors.Errorf("ssh user is mandatory to connect to %q", host)
	}
	auth, err := ReadPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return &SSHClient{
		Config: &ssh.ClientConfig{
			User:            user,
			Auth:            []ssh.AuthMethod{auth},
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         30 * time.Second,
		},
		Host: host,
		Port: port,
	}, nil
}

// RunCommand allows to run a specified command.
//
// Stdout and stderr are merged in the returned string. When ctx is
// cancelled a SIGKILL is sent to the remote process and the session is closed.
func (client *SSHClient) RunCommand(ctx context.Context, cmd string) (string, error) {
	conn, err := ssh.Dial("tcp", net.JoinHostPort(client.Host, fmt.Sprint(client.Port)), client.Config)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to open SSH connection")
	}
	defer conn.Close()

	session, err := conn.NewSession()
	if err != nil {
		return "", errors.Wrapf(err, "Failed to create session")
	}
	defer session.Close()

	var b bytes.Buffer
	session.Stderr = &b
	session.Stdout = &b

	chClosed := make(chan struct{})
	defer close(chClosed)
	go func() {
		select {
		case <-ctx.Done():
			log.Debug("[SSHSession] Cancellation has been sent: a sigkill signal is sent to remote process")
			session.Signal(ssh.SIGKILL)
			session.Close()
		case <-chClosed:
		}
	}()

	log.Debugf("[SSHSession] %q", cmd)
	err = session.Run(cmd)
	return b.String(), err
}

// ReadPrivateKey returns an authentication method relying on private/public key pairs
// The argument is :
// - either a path to the private key file,
// - or the content or this private key file
func ReadPrivateKey(pk string) (ssh.AuthMethod, error) {
	var p []byte
	// check if pk is a path
	keyPath, err := homedir.Expand(pk)
	if err != nil {
		return nil, errors.Wrap(err, "failed to expand key path")
	}
	if _, err := os.Stat(keyPath); err == nil {
		p, err = ioutil.ReadFile(keyPath)
		if err != nil {
			p = []byte(pk)
		}
	} else {
		p = []byte(pk)
	}

	// We parse the private key on our own first so that we can
	// show a nicer error if the private key has a password.
	block, _ := pem.Decode(p)
	if block == nil {
		return nil, errors.Errorf("Failed to read key %q: no key found", pk)
	}
	if block.Headers["Proc-Type"] == "4,ENCRYPTED" {
		return nil, errors.Errorf(
			"Failed to read key %q: password protected keys are\n"+
				"not supported. Please decrypt the key prior to use.", pk)
	}

	signer, err := ssh.ParsePrivateKey(p)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse key file %q", pk)
	}

	return ssh.PublicKeys(signer), nil
}
