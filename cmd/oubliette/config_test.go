// Copyright 2026 The Oubliette Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oubliette.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `recipients:
  - age1ql3z7hjy54pw3hyww5ayyfg7zqgvc7w3j2elw8zmrj2kg5sfn9aqmcac8p
  - age1lggyhqrw2nlhcxprm67z43rta597azn8gknawjehu9d9dl0jq3yqqvfafg
identity: /etc/oubliette/identity.age
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if len(cfg.Recipients) != 2 {
		t.Errorf("len(Recipients) = %d, want 2", len(cfg.Recipients))
	}
	if cfg.Identity != "/etc/oubliette/identity.age" {
		t.Errorf("Identity = %q, want /etc/oubliette/identity.age", cfg.Identity)
	}
}

func TestLoadConfig_EnvironmentFallback(t *testing.T) {
	path := writeConfigFile(t, "identity: /from/env\n")
	t.Setenv("OUBLIETTE_CONFIG", path)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Identity != "/from/env" {
		t.Errorf("Identity = %q, want /from/env", cfg.Identity)
	}
}

func TestLoadConfig_FlagWinsOverEnvironment(t *testing.T) {
	flagPath := writeConfigFile(t, "identity: /from/flag\n")
	envPath := writeConfigFile(t, "identity: /from/env\n")
	t.Setenv("OUBLIETTE_CONFIG", envPath)

	cfg, err := loadConfig(flagPath)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Identity != "/from/flag" {
		t.Errorf("Identity = %q, want /from/flag", cfg.Identity)
	}
}

func TestLoadConfig_Unconfigured(t *testing.T) {
	t.Setenv("OUBLIETTE_CONFIG", "")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if len(cfg.Recipients) != 0 || cfg.Identity != "" {
		t.Errorf("expected an empty config, got %+v", cfg)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("loadConfig() with a missing file should return error")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "recipients: [unterminated\n")
	if _, err := loadConfig(path); err == nil {
		t.Error("loadConfig() with malformed YAML should return error")
	}
}
