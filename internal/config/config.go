// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept in the file; the keyring password is
// read from the environment and the access token goes to the OS keychain.
//
// Precedence, lowest first: built-in defaults, config.json, .env, process
// environment, command-line flags (applied by cmd).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"kenes/cli/internal/xdg"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	APIURL   string `json:"api_url"`
	WSURL    string `json:"ws_url"`
	LogLevel string `json:"log_level"`
	// StaleTime is the default staleness window of cached reads.
	StaleTime Duration `json:"stale_time"`
	// RetainFor is how long unused cache entries are kept.
	RetainFor Duration `json:"retain_for"`
	// RequestTimeout bounds each HTTP request. Zero means no timeout.
	RequestTimeout Duration      `json:"request_timeout"`
	Keyring        KeyringConfig `json:"keyring"`
}

// KeyringConfig selects where the access token is stored.
type KeyringConfig struct {
	Backend string `json:"backend,omitempty"`
	FileDir string `json:"file_dir,omitempty"`
	// Password unlocks the file backend. It is never written to disk.
	Password string `json:"-"`
}

// Duration is a time.Duration that reads and writes as "30s" in JSON.
// Bare numbers are taken as seconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		d.Duration = time.Duration(x * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(x)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", x, err)
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", b)
	}
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:    "http://localhost:8000/api",
		WSURL:     "ws://localhost:8000",
		LogLevel:  "info",
		StaleTime: Duration{30 * time.Second},
		RetainFor: Duration{30 * time.Minute},
	}
}

// Environment variables read by ApplyEnv.
const (
	EnvAPIURL          = "KENES_API_URL"
	EnvWSURL           = "KENES_WS_URL"
	EnvLogLevel        = "KENES_LOG_LEVEL"
	EnvStaleTime       = "KENES_STALE_TIME"
	EnvKeyringBackend  = "KENES_KEYRING_BACKEND"
	EnvKeyringPassword = "KENES_KEYRING_PASSWORD"
)

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load resolves the effective configuration from the config file, a .env
// file in the working directory and the process environment.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	c, err := LoadFile(p)
	if err != nil {
		return c, err
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, fmt.Errorf("read .env: %w", err)
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// LoadFile reads configuration from p over the defaults; a missing file
// yields the defaults.
func LoadFile(p string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", p, err)
	}
	return c, nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str(EnvAPIURL, &c.APIURL)
	str(EnvWSURL, &c.WSURL)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvKeyringBackend, &c.Keyring.Backend)
	if v, ok := lookup(EnvKeyringPassword); ok {
		c.Keyring.Password = v
	}
	if v, ok := lookup(EnvStaleTime); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStaleTime, err)
		}
		c.StaleTime = Duration{d}
	}
	return nil
}

// Validate checks values that would otherwise fail later in obscure ways.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an absolute http(s) URL, got %q", c.APIURL)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.RequestTimeout.Duration < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	return nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
