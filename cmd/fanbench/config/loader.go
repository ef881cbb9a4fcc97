// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no configuration file is named.
const DefaultPath = "fanbench.yaml"

// Load reads the configuration at path on top of DefaultConfig.
//
// Description:
//
//	An empty path returns the defaults. A named file must exist. Keys
//	missing from the file keep their default values.
//
// Outputs:
//   - FanbenchConfig: The merged configuration, validated.
//   - error: Read, parse or validation failure. A missing file wraps
//     os.ErrNotExist.
func Load(path string) (FanbenchConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read the config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDefault reads DefaultPath from the working directory if it exists,
// and returns DefaultConfig otherwise.
func LoadDefault() (FanbenchConfig, error) {
	return loadOptional(DefaultPath)
}

func loadOptional(path string) (FanbenchConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// WriteDefault writes DefaultConfig to path, creating parent directories.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
