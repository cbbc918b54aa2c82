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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nithin8919/policyengine/pkg/engine"
	"github.com/nithin8919/policyengine/pkg/query"
)

// QueryCmd runs one query through the engine and prints its response.
type QueryCmd struct {
	Question string `arg:"" name:"question" help:"The natural-language question to ask."`

	Mode string `help:"Force a query mode instead of letting the intent classifier decide." enum:",qa,deep_think,brainstorm" default:""`
	UseInternet bool `name:"use-internet" help:"Force inclusion of the internet pseudo-vertical."`
	Format string `short:"f" help:"Output format: json or text." default:"text" enum:"json,text"`
}

func (c *QueryCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	opts := query.PlannerOptions{}
	if c.Mode != "" {
		mode := c.Mode
		opts.ExplicitMode = &mode
	}
	if c.UseInternet {
		useInternet := true
		opts.UseInternet = &useInternet
	}

	resp, err := eng.Query(context.Background(), c.Question, opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	switch c.Format {
		case "json":
			return printJSON(resp)
		default:
			printText(resp)
			return nil
	}
}

func printJSON(resp *engine.Response) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", " ")
	return encoder.Encode(resp)
}

func printText(resp *engine.Response) {
	fmt.Printf("Mode: %s (confidence %.2f)\n", resp.Query.Mode, resp.Query.ModeConfidence)
	fmt.Printf("Verticals searched: %s\n", strings.Join(resp.Search.VerticalsSearched, ", "))
	fmt.Printf("Results: %d\n\n", resp.Search.TotalResults)

	if resp.Answer.Text != "" {
		fmt.Println(resp.Answer.Text)
		fmt.Println()
	}

	for _, entry := range resp.Answer.Bibliography {
		fmt.Printf("[%d] %s\n", entry.Number, entry.Text)
	}

	fmt.Printf("\n(%d ms, %d cache hits)\n", resp.Trace.TimingMs, resp.Trace.CacheHits)
}
