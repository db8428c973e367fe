// Package mcpserver exposes the inline lookup pipeline as MCP tools over
// stdio, so assistants can search GitHub the same way the bot does.
package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flemzord/ghinline/internal/github"
	"github.com/flemzord/ghinline/internal/inline"
)

// Tool names.
const (
	ToolSearch    = "search_repositories"
	ToolRateLimit = "rate_limit_status"
)

// Searcher resolves a raw inline query. *inline.Handler satisfies it.
type Searcher interface {
	Handle(ctx context.Context, raw string) inline.Answer
}

// StatusSource reports the GitHub quota. *github.Client satisfies it.
type StatusSource interface {
	RateLimitStatus(ctx context.Context) *github.RateLimit
}

// Server wraps an MCP server with the ghinline tools registered.
type Server struct {
	searcher Searcher
	status   StatusSource
	logger   *slog.Logger
	mcp      *server.MCPServer
}

// New builds the server. status may be nil, in which case the rate limit
// tool reports that the status is unavailable.
func New(searcher Searcher, status StatusSource, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		searcher: searcher,
		status:   status,
		logger:   logger.With("component", "mcp"),
		mcp:      server.NewMCPServer("ghinline", version, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcp.NewTool(ToolSearch,
		mcp.WithDescription("Search GitHub repositories. Accepts a username (\"microsoft\") or owner/repo (\"microsoft/vscode\")."),
		mcp.WithString("query", mcp.Required(), mcp.Description("username or owner/repo")),
	), s.handleSearch)

	s.mcp.AddTool(mcp.NewTool(ToolRateLimit,
		mcp.WithDescription("Report the remaining GitHub API quota."),
	), s.handleRateLimit)

	return s
}

// Tools returns the registered tool names.
func (s *Server) Tools() []string {
	return []string{ToolSearch, ToolRateLimit}
}

// Serve speaks MCP over in and out until ctx is cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(io.Discard, "", 0))
	s.logger.Info("mcp: serving on stdio", "tools", s.Tools())
	return stdio.Listen(ctx, in, out)
}

// SearchItem is one repository in a search_repositories answer.
type SearchItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Message     string `json:"message_html"`
}

// SearchResult is the JSON body of a search_repositories answer.
type SearchResult struct {
	Query   string       `json:"query"`
	Outcome string       `json:"outcome"`
	Reason  string       `json:"reason,omitempty"`
	Items   []SearchItem `json:"items"`
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	answer := s.searcher.Handle(ctx, raw)
	out := SearchResult{
		Query:   raw,
		Outcome: answer.Outcome.String(),
		Reason:  answer.Reason,
		Items:   make([]SearchItem, 0, len(answer.Results)),
	}
	for _, r := range answer.Results {
		out.Items = append(out.Items, SearchItem{
			Title:       r.Title,
			Description: r.Description,
			Message:     r.MessageText,
		})
	}

	if answer.Outcome == inline.OutcomeError {
		return mcp.NewToolResultError(answer.Reason), nil
	}
	return jsonResult(out)
}

func (s *Server) handleRateLimit(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.status == nil {
		return mcp.NewToolResultError("Unable to fetch rate limit status"), nil
	}
	rl := s.status.RateLimitStatus(ctx)
	if rl == nil {
		return mcp.NewToolResultError("Unable to fetch rate limit status"), nil
	}
	core := rl.Resources.Core
	return jsonResult(map[string]any{
		"remaining":     core.Remaining,
		"limit":         core.Limit,
		"reset":         core.ResetTime().UTC(),
		"usage_percent": core.UsagePercent(),
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
