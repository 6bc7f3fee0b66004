package config

import (
	"fmt"
	"strings"
)

// Config represents the complete configuration for the ctcbeam application.
// It covers all commands (decode, serve) and supports loading from
// configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Decoder configuration
	Decoder DecoderConfig `mapstructure:"decoder" yaml:"decoder" json:"decoder"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// DecoderConfig contains CTC decoding settings.
type DecoderConfig struct {
	AlphabetPath string `mapstructure:"alphabet_path" yaml:"alphabet_path" json:"alphabet_path"`
	Method       string `mapstructure:"method" yaml:"method" json:"method"`
	BeamWidth    int    `mapstructure:"beam_width" yaml:"beam_width" json:"beam_width"`
	Top          int    `mapstructure:"top" yaml:"top" json:"top"`
	Workers      int    `mapstructure:"workers" yaml:"workers" json:"workers"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format         string `mapstructure:"format" yaml:"format" json:"format"`
	File           string `mapstructure:"file" yaml:"file" json:"file"`
	ScorePrecision int    `mapstructure:"score_precision" yaml:"score_precision" json:"score_precision"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string `mapstructure:"host" yaml:"host" json:"host"`
	Port              int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin        string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxBodyMB         int64  `mapstructure:"max_body_mb" yaml:"max_body_mb" json:"max_body_mb"`
	TimeoutSec        int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout   int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	RateLimitEnabled  bool   `mapstructure:"rate_limit_enabled" yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int    `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
}

// Decoding method names accepted by DecoderConfig.Method.
const (
	MethodGreedy     = "greedy"
	MethodBeamSearch = "beam_search"
)

// DefaultConfig returns a configuration populated with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Verbose:  false,
		Decoder: DecoderConfig{
			Method:    MethodBeamSearch,
			BeamWidth: 10,
			Top:       5,
			Workers:   4,
		},
		Output: OutputConfig{
			Format:         "text",
			ScorePrecision: 6,
		},
		Server: ServerConfig{
			Host:              "localhost",
			Port:              8080,
			CORSOrigin:        "*",
			MaxBodyMB:         16,
			TimeoutSec:        30,
			ShutdownTimeout:   10,
			RateLimitEnabled:  false,
			RequestsPerMinute: 120,
			RequestsPerHour:   2000,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validMethods := []string{MethodGreedy, MethodBeamSearch}
	if !contains(validMethods, c.Decoder.Method) {
		return fmt.Errorf("invalid decoding method: %s (must be one of: %s)",
			c.Decoder.Method, strings.Join(validMethods, ", "))
	}
	if c.Decoder.BeamWidth < 1 {
		return fmt.Errorf("invalid beam width: %d (must be >= 1)", c.Decoder.BeamWidth)
	}
	if c.Decoder.Top < 0 {
		return fmt.Errorf("invalid top hypothesis count: %d (must be >= 0)", c.Decoder.Top)
	}
	if c.Decoder.Workers <= 0 {
		return fmt.Errorf("invalid decode workers: %d (must be positive)", c.Decoder.Workers)
	}

	validFormats := []string{"text", "json", "yaml"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)",
			c.Output.Format, strings.Join(validFormats, ", "))
	}
	if c.Output.ScorePrecision < 0 || c.Output.ScorePrecision > 17 {
		return fmt.Errorf("invalid score precision: %d (must be between 0 and 17)", c.Output.ScorePrecision)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxBodyMB <= 0 {
		return fmt.Errorf("invalid max body size: %d (must be positive)", c.Server.MaxBodyMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %d (must be positive)", c.Server.ShutdownTimeout)
	}
	if c.Server.RateLimitEnabled {
		if c.Server.RequestsPerMinute <= 0 {
			return fmt.Errorf("invalid requests per minute: %d (must be positive)", c.Server.RequestsPerMinute)
		}
		if c.Server.RequestsPerHour <= 0 {
			return fmt.Errorf("invalid requests per hour: %d (must be positive)", c.Server.RequestsPerHour)
		}
	}

	return nil
}

// contains checks if a slice contains a specific string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
