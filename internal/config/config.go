// Package config loads API settings from defaults, an optional YAML file and
// environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wirescope/core/internal/history"
)

var (
	ErrAddressRequired = errors.New("config: listen address required")
	ErrHistoryLimit    = errors.New("config: history limit must be positive")
)

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HistoryConfig struct {
	Limit int `yaml:"limit"`
}

type CorsConfig struct {
	AllowedOrigin string `yaml:"allowed_origin"`
}

type Config struct {
	Addr    string        `yaml:"addr"`
	Service string        `yaml:"service"`
	Log     LogConfig     `yaml:"log"`
	History HistoryConfig `yaml:"history"`
	Cors    CorsConfig    `yaml:"cors"`
	// LoadSample seeds the workspace with the bundled sample on start.
	LoadSample bool `yaml:"load_sample"`
}

func Default() Config {
	return Config{
		Addr:    ":8080",
		Service: "wirescope-api",
		Log:     LogConfig{Level: "info", Format: "json"},
		History: HistoryConfig{Limit: history.DefaultLimit},
		Cors:    CorsConfig{AllowedOrigin: "*"},
	}
}

// Load reads the file named by WIRESCOPE_CONFIG when set, then applies
// environment overrides and validates the result.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("WIRESCOPE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.Addr = getenvDefault("WIRESCOPE_ADDR", cfg.Addr)
	cfg.Log.Level = getenvDefault("WIRESCOPE_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getenvDefault("WIRESCOPE_LOG_FORMAT", cfg.Log.Format)
	cfg.History.Limit = getenvIntDefault("WIRESCOPE_HISTORY_LIMIT", cfg.History.Limit)
	cfg.Cors.AllowedOrigin = getenvDefault("CORS_ALLOWED_ORIGIN", cfg.Cors.AllowedOrigin)
	cfg.LoadSample = getenvBoolDefault("WIRESCOPE_LOAD_SAMPLE", cfg.LoadSample)

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return ErrAddressRequired
	}
	if c.History.Limit <= 0 {
		return fmt.Errorf("%w: got %d", ErrHistoryLimit, c.History.Limit)
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBoolDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
