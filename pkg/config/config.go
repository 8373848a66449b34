/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile is a generic helper that loads a JSON or YAML file from path into
// the struct pointed to by dst. Files ending in .yaml or .yml are read as
// YAML, everything else as JSON.
func LoadFile(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("failed to unmarshal YAML from '%s': %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("failed to unmarshal JSON from '%s': %w", path, err)
		}
	}

	return nil
}

// ValidateConfig validates a configuration if it implements Validator.
func ValidateConfig(cfg interface{}) error {
	if v, ok := cfg.(Validator); ok {
		return v.Validate()
	}

	return nil
}

// Environment variables that override the matching bridge config fields.
const (
	EnvBaseURL   = "STATSBRIDGE_BASE_URL"
	EnvMode      = "STATSBRIDGE_MODE"
	EnvTransport = "STATSBRIDGE_TRANSPORT"
)

// LoadBridgeConfig loads path, or starts from defaults when path is empty,
// applies environment overrides and validates the result.
func LoadBridgeConfig(path string) (BridgeConfig, error) {
	var cfg BridgeConfig

	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	for env, field := range map[string]*string{
		EnvBaseURL:   &cfg.BaseURL,
		EnvMode:      &cfg.Mode,
		EnvTransport: &cfg.Transport,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*field = v
		}
	}

	if err := ValidateConfig(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// LoadSinkConfig is LoadBridgeConfig for the reference sink.
func LoadSinkConfig(path string) (SinkConfig, error) {
	var cfg SinkConfig

	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, ValidateConfig(&cfg)
}

// LoadAndValidate loads a configuration file and validates it if possible.
func LoadAndValidate(path string, cfg interface{}) error {
	if err := LoadFile(path, cfg); err != nil {
		return err
	}

	return ValidateConfig(cfg)
}
