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
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps validation failures.
var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

// Load reads the config at path, creating it with defaults on first run.
// An empty path means DefaultPath(). Keys missing from the file keep their
// default values.
//
// Outputs:
//   - GraphPlanConfig: The validated config.
//   - bool: True when the file was created by this call.
//   - error: Read, parse or ErrInvalidConfig errors.
func Load(path string) (GraphPlanConfig, bool, error) {
	if path == "" {
		path = DefaultPath()
	}
	created := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return GraphPlanConfig{}, false, err
		}
		created = true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return GraphPlanConfig{}, false, fmt.Errorf("failed to read the config file %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return GraphPlanConfig{}, false, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, created, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (GraphPlanConfig, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return GraphPlanConfig{}, fmt.Errorf("failed to parse the config: %w", err)
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	if err := Validate(cfg); err != nil {
		return GraphPlanConfig{}, err
	}
	return cfg, nil
}

// Validate checks struct tags on cfg.
func Validate(cfg GraphPlanConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
