package github

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"
)

// APIError describes a failed GitHub API call. StatusCode is 0 when the
// request never produced a response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("github: %s %s: %v", e.Method, e.Path, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("github: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github: %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request was abandoned because it took too long.
func (e *APIError) Timeout() bool {
	if e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// RateLimitError is returned without contacting GitHub when the local
// budget is at or below the reserve.
type RateLimitError struct {
	Remaining int
	ResetAt   time.Time
	// Wait is the time left until ResetAt when the error was raised.
	Wait time.Duration
}

func (e *RateLimitError) Error() string {
	return "github: " + e.Explain()
}

// Explain returns the user-facing description of the condition.
func (e *RateLimitError) Explain() string {
	minutes := int(math.Ceil(e.Wait.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("GitHub API rate limit exceeded. Resets in %d minutes", minutes)
}
