// Package config provides configuration management for decimalcheck.
// It uses YAML-only configuration with centralized defaults and no environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/constants"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/logging"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/matcher"
)

const (
	// VersionMajor is the major version number
	VersionMajor = 1
	// VersionMinor is the minor version number
	VersionMinor = 2
	// AppName is reported by the health endpoint and the CLI.
	AppName = "decimalcheck"
)

// Version returns the version string in format {major}.{minor}
func Version() string {
	return fmt.Sprintf("%d.%d", VersionMajor, VersionMinor)
}

// Defaults contains all default configuration values
// centralized in one place to avoid hardcoded literals
var Defaults = struct {
	Server struct {
		Port   int
		Host   string
		Prefix string
	}
	Logging struct {
		Level  string
		Format string
		Path   string
	}
	Audit struct {
		Enabled      bool
		Connection   string
		MaxOpenConns int
	}
	Batch struct {
		MaxSize int
	}
	ConfigPath string
}{
	Server: struct {
		Port   int
		Host   string
		Prefix string
	}{
		Port:   6007,
		Host:   "0.0.0.0",
		Prefix: "",
	},
	Logging: struct {
		Level  string
		Format string
		Path   string
	}{
		Level:  string(logging.LevelInfo),
		Format: logging.FormatConsole,
		Path:   "",
	},
	Audit: struct {
		Enabled      bool
		Connection   string
		MaxOpenConns int
	}{
		Enabled:      false,
		Connection:   "sqlite://decimalcheck.db",
		MaxOpenConns: 5,
	},
	Batch: struct {
		MaxSize int
	}{
		MaxSize: constants.DefaultBatchMaxSize,
	},
	ConfigPath: "decimalcheck.yaml",
}

// AppConfig holds the application configuration.
// It is designed to be immutable after initialization.
type AppConfig struct {
	Server      ServerConfig              `mapstructure:"server"`
	Logging     LoggingConfig             `mapstructure:"logging"`
	Audit       AuditConfig               `mapstructure:"audit"`
	Batch       BatchConfig               `mapstructure:"batch"`
	DefaultRule string                    `mapstructure:"default_rule"`
	Rules       map[string]matcher.Config `mapstructure:"rules"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port   int    `mapstructure:"port"`
	Host   string `mapstructure:"host"`
	Prefix string `mapstructure:"prefix"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

// AuditConfig holds the audit store configuration.
type AuditConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Connection   string `mapstructure:"connection"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// BatchConfig bounds batch validation requests.
type BatchConfig struct {
	MaxSize int `mapstructure:"max_size"`
}

var globalConfig *AppConfig

// Load initializes and loads the application configuration.
// An explicit configPath must exist. With an empty configPath the default
// file is read when present, otherwise defaults are used.
func Load(configPath string) (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("server.port", Defaults.Server.Port)
	v.SetDefault("server.host", Defaults.Server.Host)
	v.SetDefault("server.prefix", Defaults.Server.Prefix)
	v.SetDefault("logging.level", Defaults.Logging.Level)
	v.SetDefault("logging.format", Defaults.Logging.Format)
	v.SetDefault("logging.path", Defaults.Logging.Path)
	v.SetDefault("audit.enabled", Defaults.Audit.Enabled)
	v.SetDefault("audit.connection", Defaults.Audit.Connection)
	v.SetDefault("audit.max_open_conns", Defaults.Audit.MaxOpenConns)
	v.SetDefault("batch.max_size", Defaults.Batch.MaxSize)
	v.SetDefault("default_rule", "")

	v.SetConfigType("yaml")

	if configPath != "" {
		if !fileExists(configPath) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		v.SetConfigFile(configPath)
	} else if fileExists(Defaults.ConfigPath) {
		v.SetConfigFile(Defaults.ConfigPath)
	}

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	globalConfig = &cfg

	return &cfg, nil
}

// validate checks configuration values and fills in defaults.
func validate(cfg *AppConfig) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Server.Prefix != "" && !strings.HasPrefix(cfg.Server.Prefix, "/") {
		cfg.Server.Prefix = "/" + cfg.Server.Prefix
	}
	cfg.Server.Prefix = strings.TrimSuffix(cfg.Server.Prefix, "/")

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	cfg.Logging.Level = string(level)

	switch cfg.Logging.Format {
	case "":
		cfg.Logging.Format = Defaults.Logging.Format
	case logging.FormatSimple, logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("unknown log format '%s'", cfg.Logging.Format)
	}

	if cfg.Audit.Enabled && cfg.Audit.Connection == "" {
		return fmt.Errorf("audit.connection is required when audit is enabled")
	}
	if cfg.Audit.MaxOpenConns <= 0 {
		cfg.Audit.MaxOpenConns = Defaults.Audit.MaxOpenConns
	}

	if cfg.Batch.MaxSize <= 0 {
		cfg.Batch.MaxSize = Defaults.Batch.MaxSize
	}

	if cfg.Rules == nil {
		cfg.Rules = map[string]matcher.Config{}
	}
	for name, rule := range cfg.Rules {
		if rule.MaxTotalDigits == 0 {
			rule.MaxTotalDigits = constants.DefaultMaxTotalDigits
		}
		if rule.MaxTotalDigits < 0 {
			return fmt.Errorf("rule '%s': max_total_digits must be positive, got %d", name, rule.MaxTotalDigits)
		}
		if rule.MaxDecimalPlaces != nil && *rule.MaxDecimalPlaces < 0 {
			return fmt.Errorf("rule '%s': max_decimal_places cannot be negative, got %d", name, *rule.MaxDecimalPlaces)
		}
		cfg.Rules[name] = rule
	}

	// viper lowercases map keys
	cfg.DefaultRule = strings.ToLower(cfg.DefaultRule)
	if cfg.DefaultRule != "" {
		if _, ok := cfg.Rules[cfg.DefaultRule]; !ok {
			return fmt.Errorf("default_rule '%s' is not defined under rules", cfg.DefaultRule)
		}
	}

	return nil
}

// RuleSet builds the matcher rule set described by the configuration.
func (c *AppConfig) RuleSet() (*matcher.RuleSet, error) {
	return matcher.NewRuleSet(c.Rules, c.DefaultRule)
}

// Get returns the global configuration instance.
// This is thread-safe as the config is immutable after Load().
func Get() *AppConfig {
	if globalConfig == nil {
		panic("configuration not loaded - call config.Load() first")
	}
	return globalConfig
}

// fileExists reports whether path names an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
