package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/flemzord/ghinline/internal/github"
	"github.com/flemzord/ghinline/internal/metrics"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime        int64                  `json:"uptime_seconds"`
	Metrics       metrics.Snapshot       `json:"metrics"`
	Authenticated bool                   `json:"github_authenticated"`
	Budget        *github.BudgetSnapshot `json:"rate_budget,omitempty"`
	RateLimit     *github.RateLimit      `json:"rate_limit,omitempty"`
}

// handleStatus returns an http.HandlerFunc for GET /status. Unlike /health
// it asks GitHub for the authoritative quota.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{
			Uptime:  int64(time.Since(g.startedAt) / time.Second),
			Metrics: g.metrics.Snapshot(),
		}

		if g.github != nil {
			resp.Authenticated = g.github.Authenticated()
			snap := g.github.Budget().Snapshot()
			resp.Budget = &snap
			resp.RateLimit = g.github.RateLimitStatus(r.Context())
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
