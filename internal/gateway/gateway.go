// Package gateway serves the landing page and the operational HTTP
// endpoints (health, metrics, status) and receives webhooks such as
// Telegram updates in webhook mode.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/ghinline/internal/core"
	"github.com/flemzord/ghinline/internal/github"
	"github.com/flemzord/ghinline/internal/metrics"
	"github.com/flemzord/ghinline/internal/security"
)

// ModuleID is the gateway's module identifier.
const ModuleID core.ModuleID = "gateway.http"

func init() {
	core.RegisterModule(&Gateway{})
}

// StatusSource reports the GitHub client's view of the API quota.
// *github.Client satisfies it.
type StatusSource interface {
	Authenticated() bool
	Budget() *github.Budget
	RateLimitStatus(ctx context.Context) *github.RateLimit
}

// Gateway is the HTTP gateway module. It is a leaf module: nothing imports it.
type Gateway struct {
	config     Config
	appCtx     *core.AppContext
	logger     *slog.Logger
	server     *http.Server
	dispatcher *WebhookDispatcher
	authLimit  *security.RateLimiter
	startedAt  time.Time

	// Resolved lazily at Start() via service registry.
	github  StatusSource
	metrics *metrics.Metrics
}

// Compile-time interface checks.
var (
	_ core.Module       = (*Gateway)(nil)
	_ core.Configurable = (*Gateway)(nil)
	_ core.Provisioner  = (*Gateway)(nil)
	_ core.Validator    = (*Gateway)(nil)
	_ core.Starter      = (*Gateway)(nil)
	_ core.Stopper      = (*Gateway)(nil)
)

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  ModuleID,
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.config.defaults()
	g.appCtx = ctx
	g.logger = ctx.Logger
	g.dispatcher = NewWebhookDispatcher(g.logger)
	g.authLimit = security.NewRateLimiter(authAttemptsPerMinute, time.Minute)

	if svc, ok := ctx.Service("security.credentials"); ok {
		if store, ok := svc.(*security.CredentialStore); ok {
			store.Set("gateway.bearer_token", g.config.Auth.BearerToken)
			store.Set("gateway.basic_pass", g.config.Auth.BasicPass)
		}
	}

	// Channels in webhook mode register their receivers here.
	ctx.RegisterService("gateway.webhook_dispatcher", g.dispatcher)
	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return errors.New("gateway: invalid bind address: " + g.config.Bind)
	}
	if g.config.LandingDir != "" {
		index := filepath.Join(g.config.LandingDir, "index.html")
		if _, err := os.Stat(index); err != nil {
			return fmt.Errorf("gateway: landing_dir: %w", err)
		}
	}
	return nil
}

// Start implements core.Starter. It resolves dependencies from the service
// registry (lazy binding) and starts the HTTP server.
func (g *Gateway) Start() error {
	// Optional services: endpoints degrade when they are missing.
	if svc, ok := g.appCtx.Service("github.client"); ok {
		if src, ok := svc.(StatusSource); ok {
			g.github = src
		}
	}
	if svc, ok := g.appCtx.Service("metrics"); ok {
		if m, ok := svc.(*metrics.Metrics); ok {
			g.metrics = m
		}
	}

	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", ln.Addr().String())
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop implements core.Stopper. Graceful shutdown with configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
