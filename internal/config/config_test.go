// Drillmap - Disaster-Response Exercise Timeline and Map Service
// Copyright 2026 M. Fukushima (mfukushima)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfukushima/drillmap

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "nonexistent.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 5174 {
		t.Errorf("Server.Port = %d, want 5174", cfg.Server.Port)
	}
	if cfg.Store.Path != "data/drillmap.json" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Client.LogPollInterval != 5*time.Second {
		t.Errorf("Client.LogPollInterval = %v, want 5s", cfg.Client.LogPollInterval)
	}
	if cfg.Client.UndoRetention != 60*time.Second {
		t.Errorf("Client.UndoRetention = %v, want 60s", cfg.Client.UndoRetention)
	}
	if cfg.Replay.TickInterval != 700*time.Millisecond {
		t.Errorf("Replay.TickInterval = %v, want 700ms", cfg.Replay.TickInterval)
	}
	if cfg.POI.RadiusM != 7000 || cfg.POI.CacheTTL != 24*time.Hour {
		t.Errorf("POI defaults wrong: %+v", cfg.POI)
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "nonexistent.yaml"))
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("LOGGING_LEVEL", "debug")
	t.Setenv("POI_RADIUS_M", "500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want env override 8080", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.POI.RadiusM != 500 {
		t.Errorf("POI.RadiusM = %d, want 500", cfg.POI.RadiusM)
	}
}

func TestLoadFileLayerAndEnvPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "server:\n  port: 9000\nstore:\n  path: /tmp/x.json\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SERVER_PORT", "9100") // env beats file

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100 (env over file)", cfg.Server.Port)
	}
	if cfg.Store.Path != "/tmp/x.json" {
		t.Errorf("Store.Path = %q, want file value", cfg.Store.Path)
	}
}

func TestCORSOriginsFromEnvCommaSeparated(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "nonexistent.yaml"))
	t.Setenv("SECURITY_CORS_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"http://a.example", "http://b.example"}
	if len(cfg.Security.CORSOrigins) != 2 {
		t.Fatalf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	for i, w := range want {
		if cfg.Security.CORSOrigins[i] != w {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], w)
		}
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SERVER_PORT", "server.port"},
		{"POI_CACHE_TTL", "poi.cache_ttl"},
		{"SECURITY_RATE_LIMIT_REQS", "security.rate_limit_reqs"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"empty store path", func(c *Config) { c.Store.Path = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"empty poi url", func(c *Config) { c.POI.URL = "" }},
		{"zero radius", func(c *Config) { c.POI.RadiusM = 0 }},
		{"bad latitude", func(c *Config) { c.POI.Lat = 91 }},
		{"zero poll interval", func(c *Config) { c.Client.LogPollInterval = 0 }},
		{"zero tick", func(c *Config) { c.Replay.TickInterval = 0 }},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}
}

func TestValidateSkipsRateLimitWhenDisabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.RateLimitDisabled = true
	cfg.Security.RateLimitReqs = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestAddr(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 5174
	if got := cfg.Addr(); got != "127.0.0.1:5174" {
		t.Errorf("Addr = %q", got)
	}
}
