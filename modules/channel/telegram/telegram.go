package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/ghinline/internal/channel"
	"github.com/flemzord/ghinline/internal/core"
	"github.com/flemzord/ghinline/internal/gateway"
	"github.com/flemzord/ghinline/internal/github"
	"github.com/flemzord/ghinline/internal/metrics"
	"github.com/flemzord/ghinline/internal/security"
)

// ModuleID is the Telegram channel's module identifier.
const ModuleID core.ModuleID = "channel.telegram"

// webhookSource is the gateway path segment: /webhooks/telegram.
const webhookSource = "telegram"

func init() {
	core.RegisterModule(&Telegram{})
}

// StatusSource reports the GitHub quota for /status. *github.Client
// satisfies it.
type StatusSource interface {
	RateLimitStatus(ctx context.Context) *github.RateLimit
}

// Compile-time interface guards.
var (
	_ channel.Channel   = (*Telegram)(nil)
	_ core.Configurable = (*Telegram)(nil)
	_ core.Provisioner  = (*Telegram)(nil)
	_ core.Validator    = (*Telegram)(nil)
	_ core.Starter      = (*Telegram)(nil)
	_ core.Stopper      = (*Telegram)(nil)
)

// Telegram implements the Telegram Bot API channel.
type Telegram struct {
	config    Config
	client    *Client
	logger    *slog.Logger
	allowList *channel.AllowList
	limiter   *security.RateLimiter
	botUser   *User
	appCtx    *core.AppContext

	// Wired before Start, or resolved from the service registry.
	answerer channel.Answerer
	status   StatusSource
	metrics  *metrics.Metrics

	// Set during Start() depending on mode.
	poller     *Poller
	dispatcher *gateway.WebhookDispatcher
}

// ModuleInfo implements core.Module.
func (t *Telegram) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  ModuleID,
		New: func() core.Module { return &Telegram{} },
	}
}

// Configure implements core.Configurable.
func (t *Telegram) Configure(node *yaml.Node) error {
	if err := node.Decode(&t.config); err != nil {
		return fmt.Errorf("telegram: decode config: %w", err)
	}
	t.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (t *Telegram) Provision(ctx *core.AppContext) error {
	t.config.defaults()
	t.appCtx = ctx
	t.logger = ctx.Logger
	t.client = NewClient(t.config.Token, t.config.APIURL)
	t.allowList = channel.NewAllowList(t.config.AllowUsers, t.config.AllowGroups)
	t.limiter = security.NewQueryLimiter(t.config.RateLimit)

	if svc, ok := ctx.Service("security.credentials"); ok {
		if store, ok := svc.(*security.CredentialStore); ok {
			store.Set("telegram.token", t.config.Token)
			store.Set("telegram.webhook_secret", t.config.WebhookSecret)
		}
	}
	return nil
}

// Validate implements core.Validator.
func (t *Telegram) Validate() error {
	if t.config.Token == "" {
		return errors.New("telegram: token is required")
	}
	switch t.config.Mode {
	case ModePolling, ModeWebhook:
	default:
		return fmt.Errorf("telegram: invalid mode %q (must be %q or %q)", t.config.Mode, ModePolling, ModeWebhook)
	}
	if t.config.Mode == ModeWebhook && t.config.WebhookURL == "" {
		return errors.New("telegram: webhook_url is required when mode is \"webhook\"")
	}
	return t.config.validate()
}

// SetAnswerer implements channel.Channel.
func (t *Telegram) SetAnswerer(a channel.Answerer) {
	t.answerer = a
}

// Start implements core.Starter. It checks the bot token, registers the
// command menu, then starts either polling or webhook mode.
func (t *Telegram) Start() error {
	t.resolveServices()

	user, err := t.client.GetMe(context.Background())
	if err != nil {
		return fmt.Errorf("telegram: getMe failed (check token): %w", err)
	}
	t.botUser = user
	t.logger.Info("telegram bot authenticated",
		"id", user.ID,
		"username", user.Username,
	)

	// A missing command menu only degrades the UI.
	if err := t.client.SetMyCommands(context.Background(), botCommands); err != nil {
		t.logger.Warn("telegram: setMyCommands failed", "error", err)
	}

	switch t.config.Mode {
	case ModePolling:
		t.poller = NewPoller(t.client, t.handleUpdate, t.logger, t.config)
		t.poller.Start()
		t.logger.Info("telegram polling started",
			"timeout", t.config.PollingTimeout,
		)

	case ModeWebhook:
		if t.config.WebhookSecret == "" {
			t.logger.Warn("telegram webhook running without webhook_secret; " +
				"set one for production deployments")
		}
		if err := t.registerWebhook(); err != nil {
			return err
		}

		if err := t.client.SetWebhook(context.Background(), SetWebhookRequest{
			URL:            t.config.WebhookURL,
			SecretToken:    t.config.WebhookSecret,
			AllowedUpdates: t.config.AllowedUpdates,
		}); err != nil {
			return fmt.Errorf("telegram: setWebhook failed: %w", err)
		}
		t.logger.Info("telegram webhook configured",
			"url", t.config.WebhookURL,
		)
	}

	return nil
}

// resolveServices fills unset collaborators from the service registry.
func (t *Telegram) resolveServices() {
	if t.answerer == nil {
		if svc, ok := t.appCtx.Service("inline.handler"); ok {
			if a, ok := svc.(channel.Answerer); ok {
				t.answerer = a
			}
		}
	}
	if t.status == nil {
		if svc, ok := t.appCtx.Service("github.client"); ok {
			if s, ok := svc.(StatusSource); ok {
				t.status = s
			}
		}
	}
	if t.metrics == nil {
		if svc, ok := t.appCtx.Service("metrics"); ok {
			if m, ok := svc.(*metrics.Metrics); ok {
				t.metrics = m
			}
		}
	}
}

// registerWebhook resolves the gateway webhook dispatcher from the service
// registry and registers a receiver for /webhooks/telegram.
func (t *Telegram) registerWebhook() error {
	svc, ok := t.appCtx.Service("gateway.webhook_dispatcher")
	if !ok {
		return errors.New("telegram: gateway.webhook_dispatcher service not found (is the gateway module loaded?)")
	}

	dispatcher, ok := svc.(*gateway.WebhookDispatcher)
	if !ok {
		return errors.New("telegram: gateway.webhook_dispatcher is not a *gateway.WebhookDispatcher")
	}

	var verify gateway.Verifier
	if t.config.WebhookSecret != "" {
		verify = gateway.HeaderTokenVerifier(secretHeader, t.config.WebhookSecret)
	}
	dispatcher.Register(webhookSource, NewWebhookReceiver(t.handleUpdate, t.logger), verify)
	t.dispatcher = dispatcher
	return nil
}

// handleUpdate routes one update to the inline or command handler.
func (t *Telegram) handleUpdate(ctx context.Context, u *Update) {
	switch {
	case u.InlineQuery != nil:
		t.handleInlineQuery(ctx, u.InlineQuery)
	case u.Message != nil:
		t.handleMessage(ctx, u.Message)
	default:
		t.logger.Debug("skipping update", "update_id", u.UpdateID)
	}
}

func (t *Telegram) botUsername() string {
	if t.botUser == nil {
		return ""
	}
	return t.botUser.Username
}

// Stop implements core.Stopper.
func (t *Telegram) Stop(ctx context.Context) error {
	t.logger.Info("telegram channel stopping")

	switch t.config.Mode {
	case ModePolling:
		if t.poller != nil {
			t.poller.Stop()
		}
	case ModeWebhook:
		if t.dispatcher != nil {
			t.dispatcher.Unregister(webhookSource)
		}
		if err := t.client.DeleteWebhook(ctx); err != nil {
			t.logger.Warn("telegram: failed to delete webhook on shutdown", "error", err)
		}
	}

	return nil
}
