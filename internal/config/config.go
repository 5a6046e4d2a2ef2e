// Package config loads engine configuration from a YAML file with
// environment and CLI-flag overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for configuration fields.
const (
	DefaultCatalogFile      = "./catalog.yml"
	DefaultLockTimeout      = 5 * time.Second
	DefaultStatementTimeout = 30 * time.Second
	DefaultHistoryLimit     = 50
	DefaultKeepDays         = 30
)

// Config holds the application configuration loaded from file, environment, and flags.
type Config struct {
	DatabaseURL      string
	CatalogFile      string
	AppliedBy        string
	LockTimeout      time.Duration
	StatementTimeout time.Duration
	HistoryLimit     int
	KeepDays         int
}

// yamlConfig is the raw YAML file representation with string durations.
type yamlConfig struct {
	DatabaseURL      string `yaml:"database_url"`
	CatalogFile      string `yaml:"catalog_file"`
	AppliedBy        string `yaml:"applied_by"`
	LockTimeout      string `yaml:"lock_timeout"`
	StatementTimeout string `yaml:"statement_timeout"`
	HistoryLimit     int    `yaml:"history_limit"`
	KeepDays         int    `yaml:"keep_days"`
}

// New returns a Config populated with default values. AppliedBy defaults
// to the OS user when determinable.
func New() *Config {
	appliedBy := ""
	if u := os.Getenv("USER"); u != "" {
		appliedBy = u
	}

	return &Config{
		CatalogFile:      DefaultCatalogFile,
		AppliedBy:        appliedBy,
		LockTimeout:      DefaultLockTimeout,
		StatementTimeout: DefaultStatementTimeout,
		HistoryLimit:     DefaultHistoryLimit,
		KeepDays:         DefaultKeepDays,
	}
}

// Load reads a YAML configuration file and returns a Config.
// If allowMissing is true and the file does not exist, defaults are returned.
func Load(path string, allowMissing bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return New(), nil
		}

		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return fromYAML(&raw)
}

// fromYAML converts the raw YAML representation to a Config with defaults applied.
func fromYAML(raw *yamlConfig) (*Config, error) {
	cfg := New()

	if raw.DatabaseURL != "" {
		cfg.DatabaseURL = raw.DatabaseURL
	}

	if raw.CatalogFile != "" {
		cfg.CatalogFile = raw.CatalogFile
	}

	if raw.AppliedBy != "" {
		cfg.AppliedBy = raw.AppliedBy
	}

	if raw.LockTimeout != "" {
		d, err := time.ParseDuration(raw.LockTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing lock_timeout %q: %w", raw.LockTimeout, err)
		}

		cfg.LockTimeout = d
	}

	if raw.StatementTimeout != "" {
		d, err := time.ParseDuration(raw.StatementTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing statement_timeout %q: %w", raw.StatementTimeout, err)
		}

		cfg.StatementTimeout = d
	}

	if raw.HistoryLimit > 0 {
		cfg.HistoryLimit = raw.HistoryLimit
	}

	if raw.KeepDays > 0 {
		cfg.KeepDays = raw.KeepDays
	}

	return cfg, nil
}

// MergeEnv overrides config fields from SCHEMAVER_* environment variables.
func MergeEnv(cfg *Config) {
	if v := os.Getenv("SCHEMAVER_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	if v := os.Getenv("SCHEMAVER_CATALOG_FILE"); v != "" {
		cfg.CatalogFile = v
	}

	if v := os.Getenv("SCHEMAVER_APPLIED_BY"); v != "" {
		cfg.AppliedBy = v
	}

	if v := os.Getenv("SCHEMAVER_LOCK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LockTimeout = d
		}
	}

	if v := os.Getenv("SCHEMAVER_STATEMENT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.StatementTimeout = d
		}
	}
}
