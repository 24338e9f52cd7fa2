// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

// Package config loads layered configuration with Koanf v2:
// built-in defaults, then an optional YAML file, then environment variables.
// ENV > file > defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, first hit wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/drillmap/config.yaml",
	"/etc/drillmap/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	Logging  LoggingConfig  `koanf:"logging"`
	POI      POIConfig      `koanf:"poi"`
	Client   ClientConfig   `koanf:"client"`
	Replay   ReplayConfig   `koanf:"replay"`
	Security SecurityConfig `koanf:"security"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// StoreConfig configures the JSON document store.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// POIConfig configures the Overpass point-of-interest fetch. The default
// center and radius cover the original exercise area in eastern Gifu.
type POIConfig struct {
	URL      string        `koanf:"url"`
	Lat      float64       `koanf:"lat"`
	Lon      float64       `koanf:"lon"`
	RadiusM  int           `koanf:"radius_m"`
	Timeout  time.Duration `koanf:"timeout"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// ClientConfig configures the headless session layer.
type ClientConfig struct {
	// APIBase is the server base URL the session talks to.
	APIBase string `koanf:"api_base"`

	// LogPollInterval is the fixed audit-log refetch period.
	LogPollInterval time.Duration `koanf:"log_poll_interval"`

	// UndoRetention is how long a deleted event stays undoable.
	UndoRetention time.Duration `koanf:"undo_retention"`
}

// ReplayConfig configures the replay clock.
type ReplayConfig struct {
	TickInterval time.Duration `koanf:"tick_interval"`
}

// SecurityConfig configures CORS and rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// defaultConfig returns the built-in defaults, applied before file and env
// layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    5174,
			Timeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Path: "data/drillmap.json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		POI: POIConfig{
			URL:      "https://overpass-api.de/api/interpreter",
			Lat:      35.4527,
			Lon:      137.4138,
			RadiusM:  7000,
			Timeout:  25 * time.Second,
			CacheTTL: 24 * time.Hour,
		},
		Client: ClientConfig{
			APIBase:         "http://localhost:5174",
			LogPollInterval: 5 * time.Second,
			UndoRetention:   60 * time.Second,
		},
		Replay: ReplayConfig{
			TickInterval: 700 * time.Millisecond,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
	}
}

// Load builds the configuration from defaults, optional YAML file and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct.
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	// Layer 2: optional config file.
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	// Layer 3: environment variables (highest priority).
	// SERVER_PORT -> server.port, POI_CACHE_TTL -> poi.cache_ttl
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	// CORS origins may arrive as one comma-separated env string.
	if v := k.Get("security.cors_origins"); v != nil {
		if s, ok := v.(string); ok {
			k.Set("security.cors_origins", splitAndTrim(s))
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// sections whitelists the env prefixes mapped into config keys, so unrelated
// process environment (PATH, LC_ALL, ...) is never hoovered in.
var sections = []string{"SERVER_", "STORE_", "LOGGING_", "POI_", "CLIENT_", "REPLAY_", "SECURITY_"}

// envTransform maps SECTION_FIELD_NAME to section.field_name. Returns empty
// for variables outside the known sections, which koanf skips.
func envTransform(s string) string {
	for _, prefix := range sections {
		if strings.HasPrefix(s, prefix) {
			section := strings.ToLower(strings.TrimSuffix(prefix, "_"))
			field := strings.ToLower(strings.TrimPrefix(s, prefix))
			return section + "." + field
		}
	}
	return ""
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Validate checks invariants the rest of the system assumes.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	if c.POI.URL == "" {
		return fmt.Errorf("poi.url is required")
	}
	if c.POI.RadiusM <= 0 {
		return fmt.Errorf("poi.radius_m must be positive")
	}
	if c.POI.Lat < -90 || c.POI.Lat > 90 {
		return fmt.Errorf("poi.lat must be -90 to 90")
	}
	if c.POI.Lon < -180 || c.POI.Lon > 180 {
		return fmt.Errorf("poi.lon must be -180 to 180")
	}
	if c.Client.LogPollInterval <= 0 {
		return fmt.Errorf("client.log_poll_interval must be positive")
	}
	if c.Client.UndoRetention <= 0 {
		return fmt.Errorf("client.undo_retention must be positive")
	}
	if c.Replay.TickInterval <= 0 {
		return fmt.Errorf("replay.tick_interval must be positive")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs <= 0 {
			return fmt.Errorf("security.rate_limit_reqs must be positive")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive")
		}
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
