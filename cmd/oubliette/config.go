// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// config holds the tool's file-based configuration. Configuration is
// loaded from a single file specified by the --config flag or the
// OUBLIETTE_CONFIG environment variable. There are no fallbacks or
// automatic discovery: this keeps the set of recipients a secret is
// sealed to deterministic and auditable.
type config struct {
	// Recipients are age public keys added to every seal operation,
	// in addition to any given with --recipient.
	Recipients []string `yaml:"recipients"`

	// Identity is the path to the age private key file used by
	// unseal when --identity is not given.
	Identity string `yaml:"identity"`
}

// loadConfig resolves and reads the config file. The flag value wins
// over the environment variable. When neither is set, an empty config
// is returned: both seal and unseal can run on flags alone.
func loadConfig(flagPath string) (*config, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv("OUBLIETTE_CONFIG")
	}
	if path == "" {
		return &config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}
