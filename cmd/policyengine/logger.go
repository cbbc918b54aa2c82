// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/nithin8919/policyengine/pkg/logger"
)

// initLoggerFromCLI initializes the process-wide slog logger from CLI
// flags. No command applies the config file's logger section
// (pkg/config.LoggerConfig); these flags alone configure logging.
func initLoggerFromCLI(level, file, format string) (func(), error) {
	if level == "" {
		level = "info"
	}
	if format == "" {
		format = "simple"
	}

	parsed, err := logger.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var output *os.File
	var cleanup func()
	if file != "" {
		f, cleanupFn, err := logger.OpenLogFile(file)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		output = f
		cleanup = cleanupFn
	} else {
		output = os.Stderr
	}

	logger.Init(parsed, output, format)
	return cleanup, nil
}
