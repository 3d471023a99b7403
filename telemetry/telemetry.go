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

package telemetry

import (
	"time"

	metrics "github.com/armon/go-metrics"
	"github.com/pkg/errors"

	"github.com/ystia/slurmtrain/config"
	"github.com/ystia/slurmtrain/log"
)

// DefaultServiceName is the metrics prefix used when none is configured
const DefaultServiceName = "slurmtrain"

// Setup installs the global metrics sinks.
//
// An in-memory sink is always set up, it is dumped to stderr on SIGUSR1. A
// statsd sink is added when an address is configured.
func Setup(cfg config.Telemetry) (*metrics.InmemSink, error) {
	memSink := metrics.NewInmemSink(10*time.Second, time.Minute)
	metrics.DefaultInmemSignal(memSink)
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	metricsConf := metrics.DefaultConfig(serviceName)
	metricsConf.EnableHostname = false

	if cfg.StatsdAddress == "" {
		log.Debugln("Using InMemory only telemetry")
		_, err := metrics.NewGlobal(metricsConf, memSink)
		return memSink, errors.Wrap(err, "failed to setup telemetry")
	}

	log.Debugf("Setting up a statsd telemetry service on %q", cfg.StatsdAddress)
	statsdSink, err := metrics.NewStatsdSink(cfg.StatsdAddress)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create Statsd telemetry service")
	}
	_, err = metrics.NewGlobal(metricsConf, metrics.FanoutSink{statsdSink, memSink})
	return memSink, errors.Wrap(err, "failed to setup telemetry")
}
