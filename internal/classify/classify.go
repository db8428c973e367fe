// Package classify maps lookup failures to the short text shown to users.
package classify

import (
	"errors"
	"net/http"

	"github.com/flemzord/ghinline/internal/github"
)

// User-facing messages.
const (
	MsgUnknown     = "Unknown error"
	MsgTimeout     = "GitHub request timeout"
	MsgRateLimited = "GitHub API rate limit exceeded. Please try again later."
	MsgNotFound    = "Repository not found"
	MsgInvalid     = "Invalid search query"
	MsgSearchError = "GitHub search error"
)

// Message returns the display text for err.
func Message(err error) string {
	if err == nil {
		return MsgUnknown
	}

	var rlErr *github.RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr.Explain()
	}

	var apiErr *github.APIError
	if errors.As(err, &apiErr) {
		return apiMessage(apiErr)
	}

	if msg := err.Error(); msg != "" {
		return "Error: " + msg
	}
	return MsgUnknown
}

func apiMessage(err *github.APIError) string {
	if err.Timeout() {
		return MsgTimeout
	}
	switch err.StatusCode {
	case http.StatusForbidden:
		return MsgRateLimited
	case http.StatusNotFound:
		return MsgNotFound
	case http.StatusUnprocessableEntity:
		return MsgInvalid
	default:
		return MsgSearchError
	}
}
