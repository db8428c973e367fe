package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/flemzord/ghinline/internal/github"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Budget    *github.BudgetSnapshot `json:"rate_budget,omitempty"`
}

// handleHealth returns an http.HandlerFunc for GET /health. It never calls
// GitHub: the budget is the locally tracked one.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC(),
		}

		if g.github != nil {
			snap := g.github.Budget().Snapshot()
			resp.Budget = &snap
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
