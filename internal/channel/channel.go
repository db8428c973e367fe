// Package channel defines what the bot needs from a messaging platform:
// inline queries routed to an answerer, and sender filtering.
package channel

import (
	"context"

	"github.com/flemzord/ghinline/internal/core"
	"github.com/flemzord/ghinline/internal/inline"
)

// Answerer turns inline query text into an answer. *inline.Handler
// satisfies it.
type Answerer interface {
	Handle(ctx context.Context, raw string) inline.Answer
}

// Channel is a messaging platform transport. Every concrete channel must
// implement this interface.
//
// The application hands the channel its answerer during wiring, before
// Start(). A channel without one answers every inline query with the
// prompt hint.
type Channel interface {
	core.Module

	// SetAnswerer gives the channel the inline query pipeline.
	SetAnswerer(a Answerer)
}

// Sender identifies who sent an inline query or command.
type Sender struct {
	ID       string
	Username string
	ChatID   string
}
