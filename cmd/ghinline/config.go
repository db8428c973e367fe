package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/ghinline/internal/config"
	"github.com/flemzord/ghinline/internal/core"
	"github.com/flemzord/ghinline/internal/github"
	"github.com/flemzord/ghinline/internal/security"
	"github.com/flemzord/ghinline/pkg/app"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(), configInitCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Validate configuration and every configured module",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			cfg, source, err := app.LoadConfig(path)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			appCtx := core.NewAppContext(logger).WithModuleConfigs(cfg.Modules)
			application := core.NewApp(appCtx)
			ids := config.Resolve(cfg)
			if err := application.LoadModules(ids); err != nil {
				return err
			}
			defer application.Stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration OK (%s, %d modules)\n", source, len(ids))
			for _, id := range ids {
				fmt.Fprintf(out, "  %s\n", id)
			}
			for _, w := range config.Warnings(cfg) {
				fmt.Fprintf(out, "warning: %s\n", w)
			}

			if show, _ := cmd.Flags().GetBool("show"); show {
				data, err := redactedConfig(cfg)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\n%s", data)
			}
			return nil
		},
	}
	cmd.Flags().Bool("show", false, "Print the resolved configuration with secrets redacted")
	return cmd
}

// redactedConfig renders cfg as YAML with secret-named keys and known token
// formats replaced.
func redactedConfig(cfg *config.Config) ([]byte, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	security.NewRedactor().RedactMap(tree)
	return yaml.Marshal(tree)
}

// initAnswers holds what the config init wizard asks for.
type initAnswers struct {
	BotToken     string
	GitHubToken  string
	Mode         string
	WebhookURL   string
	Bind         string
	CacheBackend string
	RedisAddr    string
}

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString("output")
			force, _ := cmd.Flags().GetBool("force")
			interactive, _ := cmd.Flags().GetBool("interactive")

			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", output)
			}

			answers := defaultAnswers()
			if interactive {
				if err := askAnswers(&answers); err != nil {
					return err
				}
			}

			data, err := renderConfig(answers, uuid.NewString())
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", config.FileName, "File to write")
	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	cmd.Flags().Bool("interactive", true, "Ask for values; when false, tokens are read from BOT_TOKEN and GITHUB_TOKEN at startup")
	return cmd
}

// defaultAnswers produces a file that reads its tokens from the environment.
func defaultAnswers() initAnswers {
	return initAnswers{
		BotToken:     "${BOT_TOKEN}",
		GitHubToken:  "${GITHUB_TOKEN:-}",
		Mode:         "polling",
		Bind:         ":3000",
		CacheBackend: github.CacheMemory,
	}
}

func askAnswers(a *initAnswers) error {
	a.BotToken, a.GitHubToken = "", ""
	notEmpty := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("required")
		}
		return nil
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram bot token").
				Description("From @BotFather. Use ${BOT_TOKEN} to read it from the environment.").
				EchoMode(huh.EchoModePassword).
				Validate(notEmpty).
				Value(&a.BotToken),
			huh.NewInput().
				Title("GitHub token (optional)").
				Description("Raises the API rate limit. Leave empty for unauthenticated lookups.").
				EchoMode(huh.EchoModePassword).
				Value(&a.GitHubToken),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How should the bot receive updates?").
				Options(
					huh.NewOption("Long polling", "polling"),
					huh.NewOption("Webhook through the built-in gateway", "webhook"),
				).
				Value(&a.Mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Public webhook URL").
				Placeholder("https://bot.example.com/webhooks/telegram").
				Validate(notEmpty).
				Value(&a.WebhookURL),
			huh.NewInput().
				Title("Gateway bind address").
				Value(&a.Bind),
		).WithHideFunc(func() bool { return a.Mode != "webhook" }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Lookup cache").
				Options(
					huh.NewOption("In memory", github.CacheMemory),
					huh.NewOption("Redis", github.CacheRedis),
				).
				Value(&a.CacheBackend),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Redis address").
				Placeholder("localhost:6379").
				Validate(notEmpty).
				Value(&a.RedisAddr),
		).WithHideFunc(func() bool { return a.CacheBackend != github.CacheRedis }),
	)
	return form.Run()
}

// renderConfig builds the YAML document for a. secret is used as the
// webhook secret in webhook mode.
func renderConfig(a initAnswers, secret string) ([]byte, error) {
	telegram := map[string]any{
		"token": a.BotToken,
		"mode":  a.Mode,
	}
	modules := map[string]any{"channel.telegram": telegram}

	if a.Mode == "webhook" {
		telegram["webhook_url"] = a.WebhookURL
		telegram["webhook_secret"] = secret
		modules["gateway.http"] = map[string]any{"bind": a.Bind}
	}

	gh := map[string]any{}
	if a.GitHubToken != "" {
		gh["token"] = a.GitHubToken
	}
	cacheCfg := map[string]any{"backend": a.CacheBackend, "ttl": "5m"}
	if a.CacheBackend == github.CacheRedis {
		cacheCfg["redis"] = map[string]any{"addr": a.RedisAddr}
	}
	gh["cache"] = cacheCfg

	doc := map[string]any{
		"version":   "1",
		"log_level": config.DefaultLogLevel,
		"github":    gh,
		"monitor": map[string]any{
			"schedule":   config.DefaultMonitorSchedule,
			"warn_below": config.DefaultMonitorWarnBelow,
		},
		"modules": modules,
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("config: render: %w", err)
	}
	return append([]byte("# Generated by ghinline config init.\n"), data...), nil
}
