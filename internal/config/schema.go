// Package config handles YAML configuration loading, environment variable
// expansion, defaults and structural validation for ghinline.
package config

import (
	"github.com/flemzord/ghinline/internal/github"
	"github.com/flemzord/ghinline/internal/telemetry"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`

	// GitHub configures the repository lookup client and its cache.
	GitHub github.Config `yaml:"github"`

	// Monitor configures the periodic rate budget check.
	Monitor MonitorConfig `yaml:"monitor"`

	// Telemetry configures trace export.
	Telemetry telemetry.Config `yaml:"telemetry"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "channel.telegram").
	Modules map[string]yaml.Node `yaml:"modules"`
}

// MonitorConfig controls the rate budget monitor job.
type MonitorConfig struct {
	// Schedule is a cron expression or descriptor. Defaults to "@every 60s".
	Schedule string `yaml:"schedule"`
	// WarnBelow logs a warning when the remaining budget drops under it.
	WarnBelow int `yaml:"warn_below"`
}

// Monitor defaults.
const (
	DefaultMonitorSchedule  = "@every 60s"
	DefaultMonitorWarnBelow = 10
	DefaultLogLevel         = "info"
)

// SetDefaults fills zero fields with their defaults.
func SetDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Monitor.Schedule == "" {
		cfg.Monitor.Schedule = DefaultMonitorSchedule
	}
	if cfg.Monitor.WarnBelow <= 0 {
		cfg.Monitor.WarnBelow = DefaultMonitorWarnBelow
	}
	cfg.GitHub.SetDefaults()
}
