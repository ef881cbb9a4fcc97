// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry provides observability for fanbench strategy runs.
//
// # Overview
//
// Two complementary recorders are offered:
//   - Metrics: native Prometheus collectors (runs, durations, records)
//   - OTelSink: OpenTelemetry spans and instruments per strategy run
//
// Setup builds the OpenTelemetry providers. Metrics from the OTel meter are
// bridged into the same Prometheus registry as the native collectors, so a
// single WriteTextfile call captures both.
//
//	providers, err := telemetry.Setup(telemetry.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer providers.Shutdown(ctx)
//
//	metrics := telemetry.NewMetrics(providers.Registry)
//	sink, err := telemetry.NewOTelSink(providers.OTelConfig())
//
// # Metric Naming Convention
//
// Metrics follow the pattern: fanbench_<metric>_<unit>
//
// Examples:
//   - fanbench_strategy_runs_total
//   - fanbench_strategy_duration_seconds
//   - fanbench_strategy_records_total
//
// # Thread Safety
//
// All recorders are safe for concurrent use from multiple goroutines.
package telemetry
