package gateway

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/flemzord/ghinline/internal/github"
)

// fakeStatus is a StatusSource backed by a real budget.
type fakeStatus struct {
	authenticated bool
	budget        *github.Budget
	rate          *github.RateLimit
	calls         int
}

func newFakeStatus(t *testing.T, remaining int) *fakeStatus {
	t.Helper()
	b := github.NewBudget(time.Now)
	h := http.Header{}
	h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	h.Set("X-RateLimit-Limit", "60")
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10))
	if !b.Update(h) {
		t.Fatal("budget did not accept rate headers")
	}
	return &fakeStatus{budget: b}
}

func (f *fakeStatus) Authenticated() bool   { return f.authenticated }
func (f *fakeStatus) Budget() *github.Budget { return f.budget }

func (f *fakeStatus) RateLimitStatus(_ context.Context) *github.RateLimit {
	f.calls++
	return f.rate
}
