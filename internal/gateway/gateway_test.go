package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/ghinline/internal/core"
	"github.com/flemzord/ghinline/internal/metrics"
	"github.com/flemzord/ghinline/internal/security"
)

func TestGateway_ModuleInfo(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	info := g.ModuleInfo()

	if info.ID != "gateway.http" {
		t.Errorf("ID = %q, want %q", info.ID, "gateway.http")
	}
	if info.New == nil {
		t.Fatal("New func is nil")
	}

	mod := info.New()
	if _, ok := mod.(*Gateway); !ok {
		t.Error("New() should return *Gateway")
	}
}

func TestGateway_ConfigureDefaults(t *testing.T) {
	t.Parallel()

	g := &Gateway{}

	node := mustYAMLNode(t, "{}")
	if err := g.Configure(node); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if g.config.Bind != ":3000" {
		t.Errorf("Bind = %q, want default", g.config.Bind)
	}
	if g.config.ReadTimeout != 10*time.Second {
		t.Errorf("ReadTimeout = %v, want 10s", g.config.ReadTimeout)
	}
	if g.config.WriteTimeout != 30*time.Second {
		t.Errorf("WriteTimeout = %v, want 30s", g.config.WriteTimeout)
	}
	if g.config.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", g.config.ShutdownTimeout)
	}
}

func TestGateway_ConfigureCustom(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	node := mustYAMLNode(t, `
bind: "0.0.0.0:9090"
landing_dir: /srv/landing
read_timeout: 5s
write_timeout: 15s
shutdown_timeout: 10s
auth:
  bearer_token: "my-token"
`)

	if err := g.Configure(node); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if g.config.Bind != "0.0.0.0:9090" {
		t.Errorf("Bind = %q, want custom", g.config.Bind)
	}
	if g.config.LandingDir != "/srv/landing" {
		t.Errorf("LandingDir = %q", g.config.LandingDir)
	}
	if g.config.Auth.BearerToken != "my-token" {
		t.Errorf("BearerToken = %q", g.config.Auth.BearerToken)
	}
}

func TestGateway_Provision(t *testing.T) {
	t.Parallel()

	g := &Gateway{}

	appCtx := core.NewAppContext(testLogger())
	if err := g.Provision(appCtx); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	if g.dispatcher == nil {
		t.Error("dispatcher should be initialized")
	}
	svc, ok := appCtx.Service("gateway.webhook_dispatcher")
	if !ok {
		t.Fatal("gateway.webhook_dispatcher not registered")
	}
	if svc != g.dispatcher {
		t.Error("registered dispatcher differs from the gateway's")
	}
}

func TestGateway_ValidateGoodAddress(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	g.config.Bind = "127.0.0.1:8080"
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestGateway_ValidateBadAddress(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	g.config.Bind = "not a valid address::"
	if err := g.Validate(); err == nil {
		t.Error("expected validation error for bad address")
	}
}

func TestGateway_ValidateLandingDir(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	g.config.Bind = "127.0.0.1:8080"
	g.config.LandingDir = t.TempDir()
	if err := g.Validate(); err == nil {
		t.Error("expected error for landing_dir without index.html")
	}

	if err := os.WriteFile(filepath.Join(g.config.LandingDir, "index.html"), []byte("hi"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

// freeAddr returns a free TCP address on localhost.
func freeAddr(t *testing.T) string {
	t.Helper()
	var lc net.ListenConfig
	ln, err := lc.Listen(t.Context(), "tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	if err := ln.Close(); err != nil {
		t.Fatal(err)
	}
	return addr
}

// doGet makes a GET request with context.
func doGet(t *testing.T, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// doGetWithBearer makes a GET request with a bearer token.
func doGetWithBearer(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func newTestGateway(t *testing.T, addr string, auth AuthConfig) *Gateway {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	appCtx := core.NewAppContext(logger)

	g := &Gateway{}
	g.config = Config{
		Bind:            addr,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: 2 * time.Second,
		Auth:            auth,
	}
	g.appCtx = appCtx
	g.logger = logger
	g.dispatcher = NewWebhookDispatcher(logger)
	return g
}

func TestGateway_StartStop(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	g := newTestGateway(t, addr, AuthConfig{})

	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	resp := doGet(t, "http://"+addr+"/health")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("health.Status = %q, want %q", health.Status, "ok")
	}

	if err := g.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestGateway_StartWithServices(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	g := newTestGateway(t, addr, AuthConfig{})

	m := metrics.New()
	m.RecordCommand("start")
	g.appCtx.RegisterService("metrics", m)
	g.appCtx.RegisterService("github.client", newFakeStatus(t, 7))

	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = g.Stop(context.Background()) }()

	resp := doGet(t, "http://"+addr+"/health")
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	_ = resp.Body.Close()
	if health.Budget == nil || health.Budget.Remaining != 7 {
		t.Errorf("budget = %+v, want remaining 7", health.Budget)
	}

	body := readBody(t, doGet(t, "http://"+addr+"/metrics"))
	if !strings.Contains(body, "ghinline_bot_commands_total") {
		t.Errorf("/metrics missing bot command counter:\n%s", body)
	}
}

func TestGateway_EmbeddedLandingPage(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	g := newTestGateway(t, addr, AuthConfig{})

	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = g.Stop(context.Background()) }()

	resp := doGet(t, "http://"+addr+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("landing status = %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "GitHub inline search") {
		t.Errorf("unexpected landing page:\n%s", body)
	}
}

func TestGateway_LandingDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p>custom landing</p>"), 0o600); err != nil {
		t.Fatal(err)
	}

	addr := freeAddr(t)
	g := newTestGateway(t, addr, AuthConfig{})
	g.config.LandingDir = dir

	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = g.Stop(context.Background()) }()

	if body := readBody(t, doGet(t, "http://"+addr+"/")); !strings.Contains(body, "custom landing") {
		t.Errorf("landing_dir not served, got:\n%s", body)
	}
}

func TestGateway_StatusNotMountedWithoutAuth(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	g := newTestGateway(t, addr, AuthConfig{})

	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = g.Stop(context.Background()) }()

	resp := doGet(t, "http://"+addr+"/status")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status code = %d, want 404 (not mounted)", resp.StatusCode)
	}
}

func TestGateway_StatusWithAuth(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	g := newTestGateway(t, addr, AuthConfig{BearerToken: "test-token"})

	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = g.Stop(context.Background()) }()

	// Without token → 401.
	resp := doGet(t, "http://"+addr+"/status")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no-auth status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	// With valid token → 200.
	resp2 := doGetWithBearer(t, "http://"+addr+"/status", "test-token")
	_ = resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("auth status = %d, want %d", resp2.StatusCode, http.StatusOK)
	}
}

func TestGateway_StopNilServer(t *testing.T) {
	t.Parallel()

	g := &Gateway{}
	if err := g.Stop(context.Background()); err != nil {
		t.Errorf("Stop on nil server should not error: %v", err)
	}
}

// mustYAMLNode parses YAML text into a *yaml.Node for Configure calls.
func mustYAMLNode(t *testing.T, text string) *yaml.Node {
	t.Helper()
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		t.Fatalf("YAML parse: %v", err)
	}
	if len(node.Content) > 0 {
		return node.Content[0]
	}
	return &node
}

func TestGateway_ProvisionRegistersCredentials(t *testing.T) {
	t.Parallel()

	g := &Gateway{config: Config{Auth: AuthConfig{BearerToken: "bearer-secret"}}}
	appCtx := core.NewAppContext(testLogger())
	store := security.NewCredentialStore()
	appCtx.RegisterService("security.credentials", store)

	if err := g.Provision(appCtx); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if got, _ := store.Get("gateway.bearer_token"); got != "bearer-secret" {
		t.Errorf("gateway.bearer_token = %q", got)
	}
	if _, ok := store.Get("gateway.basic_pass"); ok {
		t.Error("empty basic_pass should not be stored")
	}
}
