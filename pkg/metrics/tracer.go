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

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerConfig configures the OpenTelemetry tracer set up by
// InitGlobalTracer. The engine's Query pipeline creates no spans.
type TracerConfig struct {
	Enabled bool `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // "otlp" or "stdout"
	Endpoint string `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
	ServiceName string `yaml:"service_name"`
}

func (c *TracerConfig) SetDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "policyengine"
	}
	if c.SamplingRate == 0 {
		c.SamplingRate = 1.0
	}
	if c.Exporter == "" {
		c.Exporter = "otlp"
	}
}

// InitGlobalTracer installs a TracerProvider as the global default and
// returns it for shutdown. A disabled config installs a no-op provider
// so every span creation elsewhere in the codebase stays a cheap no-op.
func InitGlobalTracer(ctx context.Context, cfg TracerConfig) (trace.TracerProvider, error) {
	if !cfg.Enabled {
		return noop.NewTracerProvider(), nil
	}
	cfg.SetDefaults()

	var exporter sdktrace.SpanExporter
	var err error
	switch cfg.Exporter {
		case "stdout":
			exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		default:
			opts := []otlptracegrpc.Option{otlptracegrpc.WithInsecure()}
			if cfg.Endpoint != "" {
				opts = append(opts, otlptracegrpc.WithEndpoint(cfg.Endpoint))
			}
			exporter, err = otlptracegrpc.New(ctx, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("metrics: create trace exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("metrics: build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SamplingRate)),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	return tp, nil
}

// Tracer returns a named tracer from the current global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
