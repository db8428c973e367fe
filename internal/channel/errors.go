package channel

import "errors"

// Sentinel errors for channel operations.
var (
	// ErrDenied indicates the sender was blocked by the allow-list.
	ErrDenied = errors.New("channel: sender not allowed")

	// ErrNoAnswerer indicates an inline query arrived before wiring.
	ErrNoAnswerer = errors.New("channel: answerer not set")
)
