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

package log

import (
	"fmt"
	"io"
	slog "log"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// EnvDebug is the environment variable used to switch the logger to debug mode at startup
const EnvDebug = "SLURMTRAIN_LOG"

var (
	std   = slog.New(os.Stderr, "", slog.LstdFlags)
	debug = false
	mutex sync.RWMutex
)

func init() {
	switch strings.ToUpper(os.Getenv(EnvDebug)) {
	case "DEBUG", "1":
		debug = true
	}
}

// SetDebug enables or disables debug logs
func SetDebug(d bool) {
	mutex.Lock()
	defer mutex.Unlock()
	debug = d
}

// IsDebug returns true if debug logs are enabled
func IsDebug() bool {
	mutex.RLock()
	defer mutex.RUnlock()
	return debug
}

// SetOutput sets the output destination for the standard logger.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// SetOutputFile duplicates logs into a size-rotated file.
//
// The returned io.Closer should be closed before the process exits.
func SetOutputFile(path string, maxSizeMB, maxBackups int) io.Closer {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}
	std.SetOutput(io.MultiWriter(os.Stderr, lj))
	return lj
}

// SetPrefix sets the output prefix for the standard logger.
func SetPrefix(prefix string) {
	std.SetPrefix(prefix)
}

// Print calls Output to print to the standard logger.
// Arguments are handled in the manner of fmt.Print.
func Print(v ...interface{}) {
	std.Output(2, "[INFO]  "+fmt.Sprint(v...))
}

// Printf calls Output to print to the standard logger.
// Arguments are handled in the manner of fmt.Printf.
func Printf(format string, v ...interface{}) {
	std.Output(2, "[INFO]  "+fmt.Sprintf(format, v...))
}

// Println calls Output to print to the standard logger.
// Arguments are handled in the manner of fmt.Println.
func Println(v ...interface{}) {
	std.Output(2, "[INFO]  "+fmt.Sprintln(v...))
}

// Warnf prints a warning to the standard logger.
func Warnf(format string, v ...interface{}) {
	std.Output(2, "[WARN]  "+fmt.Sprintf(format, v...))
}

// Fatal is equivalent to Print() followed by a call to os.Exit(1).
func Fatal(v ...interface{}) {
	std.Output(2, "[FATAL] "+fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf is equivalent to Printf() followed by a call to os.Exit(1).
func Fatalf(format string, v ...interface{}) {
	std.Output(2, "[FATAL] "+fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Debug calls Output to print to the standard logger if debug is enable.
// Arguments are handled in the manner of fmt.Print.
func Debug(v ...interface{}) {
	if IsDebug() {
		std.Output(2, "[DEBUG] "+fmt.Sprint(v...))
	}
}

// Debugf calls Output to print to the standard logger if debug is enable.
// Arguments are handled in the manner of fmt.Printf.
func Debugf(format string, v ...interface{}) {
	if IsDebug() {
		std.Output(2, "[DEBUG] "+fmt.Sprintf(format, v...))
	}
}

// Debugln calls Output to print to the standard logger if debug is enable.
// Arguments are handled in the manner of fmt.Println.
func Debugln(v ...interface{}) {
	if IsDebug() {
		std.Output(2, "[DEBUG] "+fmt.Sprintln(v...))
	}
}
