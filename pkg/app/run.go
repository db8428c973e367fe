// Package app provides the shared entry point of the ghinline binary: it
// loads configuration, builds the lookup pipeline and runs the modules.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/flemzord/ghinline/internal/config"
	"github.com/flemzord/ghinline/internal/core"
	"github.com/flemzord/ghinline/internal/github"
	"github.com/flemzord/ghinline/internal/inline"
	"github.com/flemzord/ghinline/internal/metrics"
	"github.com/flemzord/ghinline/internal/security"
	"github.com/flemzord/ghinline/internal/telemetry"
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, the standard locations are searched and the built-in
	// environment-only defaults are used when nothing is found.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer
}

// Env is the process-wide state shared by the bot, the MCP server and the
// status command.
type Env struct {
	Config      *config.Config
	Source      string
	Logger      *slog.Logger
	Redactor    *security.Redactor
	Credentials *security.CredentialStore
	Metrics     *metrics.Metrics
	GitHub      *github.Client
	Handler     *inline.Handler

	closers []func() error
}

// LoadConfig loads and validates the configuration selected by path.
func LoadConfig(path string) (*config.Config, string, error) {
	cfg, source, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, "", err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, source, nil
}

// Prepare loads the configuration, builds the redacting logger and wires
// the GitHub lookup pipeline. The caller must Close the returned Env.
func Prepare(ctx context.Context, params RunParams) (*Env, error) {
	cfg, source, err := LoadConfig(params.ConfigPath)
	if err != nil {
		return nil, err
	}

	levelName := cfg.LogLevel
	if params.LogLevel != "" {
		levelName = params.LogLevel
	}
	level, err := config.ParseLogLevel(levelName)
	if err != nil {
		return nil, err
	}

	out := params.LogOutput
	if out == nil {
		out = os.Stderr
	}

	credStore := security.NewCredentialStore()
	credStore.Set("github.token", cfg.GitHub.Token)
	credStore.Set("github.cache.redis.password", cfg.GitHub.Cache.Redis.Password)
	redactor := security.NewRedactor()
	redactor.SyncCredentials(credStore)
	logger := security.NewLogger(out, level, redactor)

	logger.Info("configuration loaded", "source", source)
	for _, w := range config.Warnings(cfg) {
		logger.Warn(w)
	}

	env := &Env{
		Config:      cfg,
		Source:      source,
		Logger:      logger,
		Redactor:    redactor,
		Credentials: credStore,
		Metrics:     metrics.New(),
	}

	lists, repos, closeCache, err := newCaches(ctx, cfg.GitHub, logger)
	if err != nil {
		return nil, err
	}
	if closeCache != nil {
		env.closers = append(env.closers, closeCache)
	}

	env.GitHub = github.NewClient(cfg.GitHub, github.Options{
		Lists:   lists,
		Repos:   repos,
		Metrics: env.Metrics,
		Logger:  logger,
	})
	env.Handler = inline.NewHandler(env.GitHub, env.Metrics, logger)
	return env, nil
}

// Close releases the cache connection, if any.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i]())
	}
	e.closers = nil
	return errors.Join(errs...)
}

// Register exposes the shared services to modules.
func (e *Env) Register(appCtx *core.AppContext) {
	appCtx.RegisterService("security.credentials", e.Credentials)
	appCtx.RegisterService("security.redactor", e.Redactor)
	appCtx.RegisterService("metrics", e.Metrics)
	appCtx.RegisterService("github.client", e.GitHub)
	appCtx.RegisterService("inline.handler", e.Handler)
}

// Run starts the bot and blocks until SIGINT or SIGTERM.
func Run(params RunParams) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return RunContext(ctx, params)
}

// RunContext starts the bot and blocks until ctx is cancelled, then stops
// every module in reverse start order.
func RunContext(ctx context.Context, params RunParams) error {
	env, err := Prepare(ctx, params)
	if err != nil {
		return err
	}
	defer func() {
		if err := env.Close(); err != nil {
			env.Logger.Warn("closing resources", "error", err)
		}
	}()
	logger := env.Logger

	shutdownTracing, err := telemetry.Setup(ctx, env.Config.Telemetry, params.Version)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	appCtx := core.NewAppContext(logger).WithModuleConfigs(env.Config.Modules)
	env.Register(appCtx)

	application := core.NewApp(appCtx)
	ids := config.Resolve(env.Config)
	if err := application.LoadModules(ids); err != nil {
		return err
	}

	// Modules stored their secrets during Provision.
	env.Redactor.SyncCredentials(env.Credentials)

	wireChannels(application, ids, env.Handler, logger)

	monitor, err := newMonitor(env.Config.Monitor, env, logger)
	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	application.AppendModule(monitorModuleID, monitor)

	logger.Info("ghinline starting",
		"version", params.Version,
		"commit", params.Commit,
		"modules", len(ids),
		"github_authenticated", env.GitHub.Authenticated(),
	)
	return application.Run(ctx)
}
