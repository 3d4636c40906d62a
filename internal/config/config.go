// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

// Package config loads the engine configuration. Sources merge in
// priority order: built-in defaults, then a YAML config file, then
// TERRAMA2_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, first found
// wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/terrama2/config.yaml",
	"/etc/terrama2/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "TERRAMA2_CONFIG"

// envPrefix namespaces environment overrides, e.g.
// TERRAMA2_SERVER_PORT=8090 sets server.port.
const envPrefix = "TERRAMA2_"

// Config is the full engine configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server" validate:"required"`
	Database   DatabaseConfig   `koanf:"database"`
	Service    ServiceConfig    `koanf:"service" validate:"required"`
	ProcessLog ProcessLogConfig `koanf:"process_log"`
	Bus        BusConfig        `koanf:"bus"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig tunes the admin HTTP server.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout           time.Duration `koanf:"timeout"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig locates the DuckDB database serving tabular series.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// ServiceConfig tunes the analysis service.
type ServiceConfig struct {
	Workers          int           `koanf:"workers" validate:"min=1"`
	ObjectFanout     int           `koanf:"object_fanout" validate:"min=1"`
	QueueDepth       int           `koanf:"queue_depth" validate:"min=1"`
	ScheduleInterval time.Duration `koanf:"schedule_interval"`
}

// ProcessLogConfig tunes run-history persistence.
type ProcessLogConfig struct {
	Path      string        `koanf:"path"`
	Retention time.Duration `koanf:"retention"`
}

// BusConfig tunes the in-process event bus.
type BusConfig struct {
	Buffer int64 `koanf:"buffer" validate:"min=1"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8090,
			Timeout:           30 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Database: DatabaseConfig{
			Path: "/data/terrama2.duckdb",
		},
		Service: ServiceConfig{
			Workers:          2,
			ObjectFanout:     4,
			QueueDepth:       64,
			ScheduleInterval: 5 * time.Minute,
		},
		ProcessLog: ProcessLogConfig{
			Path:      "/data/processlog",
			Retention: 30 * 24 * time.Hour,
		},
		Bus: BusConfig{
			Buffer: 64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the configuration from defaults, the first config file
// found and the environment.
func Load() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom reads the configuration using an explicit file path. An
// empty path skips the file layer.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// envTransformFunc maps environment variable names to config paths.
// Multi-word leaf keys need an explicit entry; single-word leaves map
// structurally (TERRAMA2_SERVER_PORT -> server.port).
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	mappings := map[string]string{
		"server_rate_limit_requests": "server.rate_limit_requests",
		"server_rate_limit_window":   "server.rate_limit_window",
		"server_rate_limit_disabled": "server.rate_limit_disabled",
		"service_object_fanout":      "service.object_fanout",
		"service_queue_depth":        "service.queue_depth",
		"service_schedule_interval":  "service.schedule_interval",
		"process_log_path":           "process_log.path",
		"process_log_retention":      "process_log.retention",
	}
	if mapped, ok := mappings[key]; ok {
		return mapped
	}
	return strings.Replace(key, "_", ".", 1)
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
