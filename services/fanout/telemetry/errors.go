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

import "errors"

var (
	// ErrNilContext is returned when a nil context is passed.
	ErrNilContext = errors.New("context must not be nil")

	// ErrNilData is returned when nil telemetry data is passed.
	ErrNilData = errors.New("telemetry data must not be nil")

	// ErrSinkClosed is returned when recording to a closed sink.
	ErrSinkClosed = errors.New("telemetry sink is closed")

	// ErrUnknownExporter is returned for an unsupported exporter name.
	ErrUnknownExporter = errors.New("unknown telemetry exporter")

	// ErrOTelInitFailed is returned when OpenTelemetry initialization fails.
	ErrOTelInitFailed = errors.New("opentelemetry initialization failed")

	// ErrInvalidOTelConfig is returned when the OTel configuration is invalid.
	ErrInvalidOTelConfig = errors.New("invalid opentelemetry configuration")
)
