package github

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	// ReserveRequests is the number of requests kept back from the budget.
	// Lookups fail fast once the remaining count falls to it.
	ReserveRequests = 5

	// InitialRemaining is the assumed budget before GitHub has reported one.
	InitialRemaining = 60

	// UnknownResetWait is assumed when GitHub reports a low remaining count
	// without a reset time. It matches the length of GitHub's window.
	UnknownResetWait = time.Hour
)

// Budget tracks the GitHub rate limit as last reported by response headers.
// It is shared by every lookup and safe for concurrent use.
type Budget struct {
	mu        sync.Mutex
	remaining int
	limit     int
	resetAt   time.Time
	now       func() time.Time
}

// BudgetSnapshot is a copy of the budget state.
type BudgetSnapshot struct {
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	ResetAt   time.Time `json:"reset_at"`
}

// NewBudget creates a budget with the optimistic initial count.
func NewBudget(now func() time.Time) *Budget {
	if now == nil {
		now = time.Now
	}
	return &Budget{
		remaining: InitialRemaining,
		limit:     InitialRemaining,
		now:       now,
	}
}

// Check returns a *RateLimitError when the remaining count is at or below
// ReserveRequests and the window has not reset yet. A window whose reset
// time has passed counts as replenished.
func (b *Budget) Check() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.remaining > ReserveRequests {
		return nil
	}
	now := b.now()
	if !now.Before(b.resetAt) {
		return nil
	}
	return &RateLimitError{
		Remaining: b.remaining,
		ResetAt:   b.resetAt,
		Wait:      b.resetAt.Sub(now),
	}
}

// Update records the X-RateLimit-* headers of a response. It reports whether
// the headers carried a remaining count. A remaining count at or below the
// reserve with no usable reset time starts an UnknownResetWait window.
func (b *Budget) Update(h http.Header) bool {
	remaining, err := strconv.Atoi(h.Get("X-RateLimit-Remaining"))
	if err != nil {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.remaining = remaining
	if reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		b.resetAt = time.Unix(reset, 0)
	} else if now := b.now(); remaining <= ReserveRequests && !b.resetAt.After(now) {
		b.resetAt = now.Add(UnknownResetWait)
	}
	if limit, err := strconv.Atoi(h.Get("X-RateLimit-Limit")); err == nil {
		b.limit = limit
	}
	return true
}

// Snapshot returns the current state.
func (b *Budget) Snapshot() BudgetSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BudgetSnapshot{
		Remaining: b.remaining,
		Limit:     b.limit,
		ResetAt:   b.resetAt,
	}
}
