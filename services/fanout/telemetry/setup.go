// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Exporter names.
const (
	ExporterNone       = "none"
	ExporterStdout     = "stdout"
	ExporterPrometheus = "prometheus"
)

// Config controls provider setup.
//
// All fields have sensible defaults via DefaultConfig().
type Config struct {
	// ServiceName identifies this service in traces and metrics.
	ServiceName string

	// ServiceVersion is the version string for this service.
	ServiceVersion string

	// TraceExporter selects the trace exporter: "stdout" or "none".
	TraceExporter string

	// MetricExporter selects the metric exporter: "prometheus", "stdout" or "none".
	MetricExporter string

	// Output receives stdout exporter output. nil means os.Stdout.
	Output io.Writer
}

// DefaultConfig returns tracing disabled and OTel metrics bridged into
// Prometheus.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "fanbench",
		ServiceVersion: "1.0.0",
		TraceExporter:  ExporterNone,
		MetricExporter: ExporterPrometheus,
	}
}

// Providers bundles the configured telemetry backends.
//
// TracerProvider and MeterProvider are nil when their exporter is "none".
// Registry is always set and holds both native and bridged metrics.
type Providers struct {
	Config         Config
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *prometheus.Registry
}

// Setup builds the providers described by cfg.
//
// Description:
//
//	Creates a private Prometheus registry, an optional TracerProvider with a
//	synchronous stdout exporter, and an optional MeterProvider. Global OTel
//	providers are left untouched.
//
// Outputs:
//   - *Providers: Configured providers. Must be shut down by the caller.
//   - error: ErrUnknownExporter for unsupported names, or exporter errors.
func Setup(cfg Config) (*Providers, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	p := &Providers{
		Config:   cfg,
		Registry: prometheus.NewRegistry(),
	}

	switch cfg.TraceExporter {
	case ExporterNone, "":
	case ExporterStdout:
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout trace exporter: %w", err)
		}
		p.TracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.TraceExporter)
	}

	switch cfg.MetricExporter {
	case ExporterNone, "":
	case ExporterPrometheus:
		exporter, err := promexporter.New(promexporter.WithRegisterer(p.Registry))
		if err != nil {
			return nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		p.MeterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
	case ExporterStdout:
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(out), stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		p.MeterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.MetricExporter)
	}

	return p, nil
}

// OTelConfig returns a sink configuration bound to these providers.
func (p *Providers) OTelConfig() *OTelConfig {
	cfg := DefaultOTelConfig()
	if p.Config.ServiceName != "" {
		cfg.ServiceName = p.Config.ServiceName
	}
	if p.Config.ServiceVersion != "" {
		cfg.ServiceVersion = p.Config.ServiceVersion
	}
	cfg.TraceEnabled = p.TracerProvider != nil
	cfg.MetricsEnabled = p.MeterProvider != nil
	if p.TracerProvider != nil {
		cfg.TracerProvider = p.TracerProvider
	}
	if p.MeterProvider != nil {
		cfg.MeterProvider = p.MeterProvider
	}
	return cfg
}

// Shutdown flushes and stops every provider.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
