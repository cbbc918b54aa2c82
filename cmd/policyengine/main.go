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

// Command policyengine is the CLI for the policy retrieval engine.
//
// Usage:
//
//	policyengine query "what is the eligibility for Amma Vodi?" --config config.yaml
//	policyengine query "summarize GO 117 amendments" --mode deep_think
//	policyengine validate config.yaml
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/alecthomas/kong"

	"github.com/nithin8919/policyengine/pkg/config"
)

// CLI defines the command-line interface.
type CLI struct {
	Version VersionCmd `cmd:"" help:"Show version information."`
	Query QueryCmd `cmd:"" help:"Run one query against the engine and print the response."`
	Validate ValidateCmd `cmd:"" help:"Validate a configuration file."`
	Cache CacheCmd `cmd:"" help:"Inspect or clear the on-disk LLM/embedding cache."`

	Config string `short:"c" help:"Path to config file. Omit to use built-in defaults." type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (simple or verbose)." default:"simple"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("policyengine version %s\n", version)
	return nil
}

// loadConfig loads cli.Config if set, otherwise returns the built-in
// development default (chromem store, hash-fallback embedders, no LLM).
func loadConfig(cli *CLI) (*config.Config, error) {
	if cli.Config == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("policyengine"),
		kong.Description("Multi-vertical retrieval engine for Andhra Pradesh education policy"),
		kong.UsageOnError(),
	)

	cleanup, err := initLoggerFromCLI(cli.LogLevel, cli.LogFile, cli.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
