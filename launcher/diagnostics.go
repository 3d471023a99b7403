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
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-version"
	"github.com/klauspost/cpuid/v2"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
	"golang.org/x/sync/errgroup"

	"github.com/ystia/slurmtrain/config"
	"github.com/ystia/slurmtrain/helper/executil"
	"github.com/ystia/slurmtrain/helper/pathutil"
	"github.com/ystia/slurmtrain/log"
)

const unavailable = "unavailable"

var pythonVersionRegexp = regexp.MustCompile(`(?i)python\s+(\d+(?:\.\d+){0,2}\S*)`)

// Reporter prints information about the environment a training program runs in
type Reporter interface {
	Report(ctx context.Context, w io.Writer) error
}

// Prober runs a diagnostic command and returns its output
type Prober interface {
	Probe(ctx context.Context, name string, args ...string) (string, error)
}

type execProber struct{}

func (execProber) Probe(ctx context.Context, name string, args ...string) (string, error) {
	out, err := executil.Command(ctx, name, args...).CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// Diagnostics reports the interpreter, the installed packages and the host
type Diagnostics struct {
	Python           string
	Packages         []string
	MinPythonVersion string
	Timeout          time.Duration
	Lookup           pathutil.LookupFunc
	Prober           Prober
	// HostInfo is skipped when nil
	HostInfo func() []string
}

// NewDiagnostics returns Diagnostics probing the configured interpreter and packages
func NewDiagnostics(cfg config.Launcher, lookup pathutil.LookupFunc) *Diagnostics {
	return &Diagnostics{
		Python:           cfg.Python,
		Packages:         cfg.ProbePackages,
		MinPythonVersion: cfg.MinPythonVersion,
		Timeout:          cfg.ProbeTimeout,
		Lookup:           lookup,
		Prober:           execProber{},
		HostInfo:         hostInfo,
	}
}

// Report prints diagnostics to w.
//
// A failing probe is reported as unavailable, only a cancelled context or a
// write failure is returned as an error.
func (d *Diagnostics) Report(ctx context.Context, w io.Writer) error {
	lines := []string{fmt.Sprintf("Python: %s", d.pythonVersion(ctx))}

	versions := make([]string, len(d.Packages))
	g, gctx := errgroup.WithContext(ctx)
	for i, pkg := range d.Packages {
		i, pkg := i, pkg
		g.Go(func() error {
			versions[i] = d.packageVersion(gctx, pkg)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "diagnostics interrupted")
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "diagnostics interrupted")
	}
	for i, pkg := range d.Packages {
		lines = append(lines, fmt.Sprintf("%s: %s", pkg, versions[i]))
	}

	if d.HostInfo != nil {
		lines = append(lines, d.HostInfo()...)
	}
	if d.Lookup != nil {
		devices, ok := d.Lookup("CUDA_VISIBLE_DEVICES")
		if !ok {
			devices = "unset"
		}
		lines = append(lines, fmt.Sprintf("CUDA_VISIBLE_DEVICES: %s", devices))
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return errors.Wrap(err, "failed to print diagnostics")
}

func (d *Diagnostics) probe(ctx context.Context, name string, args ...string) (string, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	return d.Prober.Probe(ctx, name, args...)
}

func (d *Diagnostics) pythonVersion(ctx context.Context) string {
	out, err := d.probe(ctx, d.Python, "--version")
	if err != nil {
		log.Debugf("python version probe failed: %v", err)
		return unavailable
	}
	raw, v, err := ParsePythonVersion(out)
	if err != nil {
		log.Debugf("%v", err)
		return out
	}
	if d.MinPythonVersion != "" {
		minVersion, err := version.NewVersion(d.MinPythonVersion)
		if err != nil {
			log.Warnf("invalid minimal python version %q: %v", d.MinPythonVersion, err)
		} else if v.LessThan(minVersion) {
			log.Warnf("python %s is older than the expected %s", v, minVersion)
		}
	}
	return raw
}

func (d *Diagnostics) packageVersion(ctx context.Context, pkg string) string {
	out, err := d.probe(ctx, d.Python, "-c", fmt.Sprintf("import %s; print(%s.__version__)", pkg, pkg))
	if err != nil || out == "" {
		log.Debugf("version probe of %q failed: %v", pkg, err)
		return unavailable
	}
	// Keep only the last line, imports may print warnings before
	lines := strings.Split(out, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// ParsePythonVersion extracts the version from the output of "python --version".
// It returns the version as printed by the interpreter and its parsed form.
func ParsePythonVersion(out string) (string, *version.Version, error) {
	m := pythonVersionRegexp.FindStringSubmatch(out)
	if m == nil {
		return "", nil, errors.Errorf("no python version found in %q", out)
	}
	v, err := version.NewVersion(m[1])
	if err != nil {
		return "", nil, errors.Wrapf(err, "invalid python version %q", m[1])
	}
	return m[1], v, nil
}

func hostInfo() []string {
	var lines []string
	if info, err := host.Info(); err == nil {
		lines = append(lines, fmt.Sprintf("Host: %s (%s %s, kernel %s)", info.Hostname, info.Platform, info.PlatformVersion, info.KernelVersion))
	} else {
		lines = append(lines, "Host: "+unavailable)
	}
	lines = append(lines, fmt.Sprintf("CPU: %s (%d logical cores)", cpuid.CPU.BrandName, cpuid.CPU.LogicalCores))
	if vm, err := mem.VirtualMemory(); err == nil {
		lines = append(lines, fmt.Sprintf("Memory: %s total, %s available", humanize.IBytes(vm.Total), humanize.IBytes(vm.Available)))
	} else {
		lines = append(lines, "Memory: "+unavailable)
	}
	return lines
}
