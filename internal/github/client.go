// Package github is a small read-only client for the GitHub REST API.
//
// Every lookup first consults the shared rate Budget and fails fast with a
// *RateLimitError when it is nearly spent, then consults its cache, and only
// then calls GitHub. Not-found and rejected-query answers are folded into
// empty results so callers only see real failures.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/ghinline/internal/cache"
	"github.com/flemzord/ghinline/internal/metrics"
)

const (
	maxResponseBytes = 5 << 20
	acceptHeader     = "application/vnd.github.v3+json"
	tracerName       = "github.com/flemzord/ghinline/internal/github"
)

// Endpoint labels used in logs, metrics and spans.
const (
	EndpointSearch    = "search"
	EndpointUser      = "user"
	EndpointRepo      = "repo"
	EndpointRateLimit = "rate_limit"
)

// Options carries the collaborators of a Client. Zero values are replaced
// by in-memory caches, a fresh Budget and the default logger.
type Options struct {
	Lists      cache.Cache[[]Repository]
	Repos      cache.Cache[Repository]
	Budget     *Budget
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	HTTPClient *http.Client
}

// Client performs cached, budget-aware GitHub lookups.
type Client struct {
	baseURL   string
	token     string
	userAgent string
	http      *http.Client
	lists     cache.Cache[[]Repository]
	repos     cache.Cache[Repository]
	budget    *Budget
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewClient creates a Client. cfg is copied and defaulted.
func NewClient(cfg Config, opts Options) *Client {
	cfg.SetDefaults()

	if opts.Lists == nil {
		opts.Lists = cache.NewMemory[[]Repository](cfg.Cache.TTL)
	}
	if opts.Repos == nil {
		opts.Repos = cache.NewMemory[Repository](cfg.Cache.TTL)
	}
	if opts.Budget == nil {
		opts.Budget = NewBudget(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.APIURL, "/"),
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		http:      opts.HTTPClient,
		lists:     opts.Lists,
		repos:     opts.Repos,
		budget:    opts.Budget,
		metrics:   opts.Metrics,
		logger:    opts.Logger.With("component", "github"),
		tracer:    otel.Tracer(tracerName),
	}
}

// Authenticated reports whether requests carry a token.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// Budget returns the shared rate budget.
func (c *Client) Budget() *Budget {
	return c.budget
}

// SearchRepositories runs a repository search and returns at most
// DefaultPageSize results, most recently updated first. A query GitHub
// rejects as malformed yields an empty list.
func (c *Client) SearchRepositories(ctx context.Context, query string) ([]Repository, error) {
	if err := c.budget.Check(); err != nil {
		return nil, err
	}

	key := cache.Key(EndpointSearch, query)
	if repos, ok := c.lists.Get(ctx, key); ok {
		c.metrics.RecordCacheLookup(EndpointSearch, true)
		return repos, nil
	}
	c.metrics.RecordCacheLookup(EndpointSearch, false)

	params := url.Values{
		"q":        {query},
		"per_page": {strconv.Itoa(DefaultPageSize)},
		"sort":     {"updated"},
	}
	var resp searchResponse
	err := c.get(ctx, EndpointSearch, "/search/repositories?"+params.Encode(), &resp)
	if isStatus(err, http.StatusUnprocessableEntity) {
		c.logger.Debug("search query rejected", "query", query)
		return []Repository{}, nil
	}
	if err != nil {
		return nil, err
	}

	c.lists.Set(ctx, key, resp.Items)
	return resp.Items, nil
}

// UserRepositories lists the most recently updated repositories of a user.
// An unknown user yields an empty list.
func (c *Client) UserRepositories(ctx context.Context, username string) ([]Repository, error) {
	if err := c.budget.Check(); err != nil {
		return nil, err
	}

	key := cache.Key(EndpointUser, username)
	if repos, ok := c.lists.Get(ctx, key); ok {
		c.metrics.RecordCacheLookup(EndpointUser, true)
		return repos, nil
	}
	c.metrics.RecordCacheLookup(EndpointUser, false)

	path := fmt.Sprintf("/users/%s/repos?per_page=%d&sort=updated", url.PathEscape(username), DefaultPageSize)
	var repos []Repository
	err := c.get(ctx, EndpointUser, path, &repos)
	if isStatus(err, http.StatusNotFound) {
		return []Repository{}, nil
	}
	if err != nil {
		return nil, err
	}

	c.lists.Set(ctx, key, repos)
	return repos, nil
}

// Repository fetches owner/name. It returns (nil, nil) when the repository
// does not exist.
func (c *Client) Repository(ctx context.Context, owner, name string) (*Repository, error) {
	if err := c.budget.Check(); err != nil {
		return nil, err
	}

	key := cache.Key(EndpointRepo, owner+"/"+name)
	if repo, ok := c.repos.Get(ctx, key); ok {
		c.metrics.RecordCacheLookup(EndpointRepo, true)
		return &repo, nil
	}
	c.metrics.RecordCacheLookup(EndpointRepo, false)

	path := "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name)
	var repo Repository
	err := c.get(ctx, EndpointRepo, path, &repo)
	if isStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.repos.Set(ctx, key, repo)
	return &repo, nil
}

// RateLimitStatus asks GitHub for the current rate limits. It bypasses the
// cache and the local budget and returns nil on any failure.
func (c *Client) RateLimitStatus(ctx context.Context) *RateLimit {
	var rl RateLimit
	if err := c.get(ctx, EndpointRateLimit, "/rate_limit", &rl); err != nil {
		c.logger.Warn("rate limit status unavailable", "error", err)
		return nil
	}
	return &rl
}

// get issues a GET request and decodes a 200 response into v. Any other
// outcome is returned as an *APIError. The budget is updated from every
// response that carries rate-limit headers.
func (c *Client) get(ctx context.Context, endpoint, path string, v any) error {
	ctx, span := c.tracer.Start(ctx, "github."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodGet),
			attribute.String("github.endpoint", endpoint),
		),
	)
	defer span.End()

	err := c.doGet(ctx, endpoint, path, v, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) doGet(ctx context.Context, endpoint, path string, v any, span trace.Span) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &APIError{Method: http.MethodGet, Path: path, Err: err}
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordGitHubRequest(endpoint, 0, time.Since(start))
		c.logger.Debug("github request failed", "endpoint", endpoint, "error", err)
		return &APIError{Method: http.MethodGet, Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.metrics.RecordGitHubRequest(endpoint, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if c.budget.Update(resp.Header) {
		snap := c.budget.Snapshot()
		c.metrics.SetRateBudget(snap.Remaining, snap.Limit)
		span.SetAttributes(attribute.Int("github.rate.remaining", snap.Remaining))
	}

	c.logger.Debug("github request",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if readErr != nil {
		return &APIError{Method: http.MethodGet, Path: path, StatusCode: resp.StatusCode, Err: readErr}
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &apiErr)
		return &APIError{
			Method:     http.MethodGet,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    apiErr.Message,
		}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &APIError{
			Method:     http.MethodGet,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    "undecodable response",
			Err:        err,
		}
	}
	return nil
}

func isStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
