// Package config provides configuration for the unitlink inspector.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the inspector configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Unit catalog
	DatabaseURL string

	// Launch admission
	AllowedStages       []string
	MinForegroundTimeMs int64
	// PolicyFile replaces the built-in admission policy when set.
	PolicyFile string

	Log LogConfig
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string
	// Format: console or json
	Format string
	// File is the log file path; empty logs to stderr.
	File string
	// Rotate enables size-based rotation of File.
	Rotate     bool
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Development toggles development-friendly logging options
	Development bool
}

// Load loads configuration from UNITLINK_-prefixed environment variables,
// e.g. UNITLINK_HTTP_PORT=9090.
func Load() *Config {
	v := viper.New()
	v.SetEnvPrefix("UNITLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_port", 8080)
	v.SetDefault("database_url", "file:unitlink.db?cache=shared&mode=rwc")
	v.SetDefault("allowed_stages", "test,prod")
	v.SetDefault("min_foreground_time_ms", 0)
	v.SetDefault("policy_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("log_file", "")
	v.SetDefault("log_rotate", false)
	v.SetDefault("log_max_size_mb", 50)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 28)
	v.SetDefault("log_development", false)

	return &Config{
		HTTPPort:            v.GetInt("http_port"),
		DatabaseURL:         v.GetString("database_url"),
		AllowedStages:       splitList(v.GetString("allowed_stages")),
		MinForegroundTimeMs: v.GetInt64("min_foreground_time_ms"),
		PolicyFile:          v.GetString("policy_file"),
		Log: LogConfig{
			Level:       v.GetString("log_level"),
			Format:      v.GetString("log_format"),
			File:        v.GetString("log_file"),
			Rotate:      v.GetBool("log_rotate"),
			MaxSizeMB:   v.GetInt("log_max_size_mb"),
			MaxBackups:  v.GetInt("log_max_backups"),
			MaxAgeDays:  v.GetInt("log_max_age_days"),
			Development: v.GetBool("log_development"),
		},
	}
}

// splitList parses a comma-separated value, dropping blanks.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
