// Copyright 2022 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config reads the server configuration from the process environment.
// There are neither configuration files nor CLI flags.
package config

import (
	"fmt"
	"net"
	"os"

	"github.com/thediveo/spashell/frontend"
	"github.com/thediveo/spashell/internal/logging"
)

// Environment variables consulted by Load.
const (
	LogEnv       = "SPASHELL_LOG"
	AddrEnv      = "SPASHELL_ADDR"
	AssetsDirEnv = "SPASHELL_ASSETS_DIR"
)

// DefaultAddr is the loopback address and port the server listens on unless
// told otherwise.
const DefaultAddr = "127.0.0.1:3000"

// Config is the complete server configuration.
type Config struct {
	ListenAddr string
	AssetsDir  string
	LogFilter  string
}

// Load returns the configuration from the environment, falling back to the
// defaults for unset or empty variables.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr: getEnv(AddrEnv, DefaultAddr),
		AssetsDir:  getEnv(AssetsDirEnv, frontend.AssetsDir),
		LogFilter:  getEnv(LogEnv, logging.DefaultFilter),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for obvious mistakes that would otherwise
// only surface later when binding the listening socket.
func (c *Config) Validate() error {
	if _, port, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("invalid %s %q: %w", AddrEnv, c.ListenAddr, err)
	} else if port == "" {
		return fmt.Errorf("invalid %s %q: missing port", AddrEnv, c.ListenAddr)
	}
	if c.AssetsDir == "" {
		return fmt.Errorf("%s must not be empty", AssetsDirEnv)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}
