package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/flemzord/ghinline/internal/core"
	"github.com/flemzord/ghinline/internal/cron"
)

// RequiredModules must appear in every configuration.
var RequiredModules = []string{"channel.telegram"}

// Validate checks the structural validity of a Config.
// It verifies the version field, ensures required modules are present,
// checks that all referenced module IDs exist in the registry and
// validates the GitHub, log and telemetry settings.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if len(cfg.Modules) == 0 {
		errs = append(errs, errors.New("config: at least one module must be configured"))
	}

	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
	}

	for _, id := range RequiredModules {
		if _, ok := cfg.Modules[id]; !ok {
			errs = append(errs, fmt.Errorf("config: module %q is required", id))
		}
	}

	if cfg.LogLevel != "" {
		if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
			errs = append(errs, err)
		}
	}

	if cfg.Monitor.Schedule != "" {
		if err := cron.ParseSchedule(cfg.Monitor.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("config: monitor.schedule %q: %w", cfg.Monitor.Schedule, err))
		}
	}

	if cfg.Monitor.WarnBelow < 0 {
		errs = append(errs, fmt.Errorf("config: monitor.warn_below %d: must not be negative", cfg.Monitor.WarnBelow))
	}

	if err := cfg.GitHub.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	if err := cfg.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}

	return errors.Join(errs...)
}

// ParseLogLevel maps a level name to its slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
	}
}

// Warnings returns non-fatal observations about cfg.
func Warnings(cfg *Config) []string {
	var warns []string
	if cfg.GitHub.Token == "" {
		warns = append(warns, "github.token is not set: requests are unauthenticated and use a lower rate limit")
	}
	return warns
}
