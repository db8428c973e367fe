// Package cache provides TTL key/value stores for GitHub lookup results.
//
// Two backings exist: Memory, a process-local map with lazy expiry on read,
// and Redis, which shares entries between instances and lets Redis expire
// them. Nop disables caching. All satisfy Cache so the GitHub client never
// knows which one it talks to.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a lookup result stays fresh.
const DefaultTTL = 5 * time.Minute

// Cache stores values of type T under string keys.
// A miss, an expired entry and a backend failure all report ok == false.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (value T, ok bool)
	Set(ctx context.Context, key string, value T)
}

// Key builds the composite key for an operation and its parameter,
// e.g. Key("repo", "golang/go") == "repo:golang/go".
func Key(op, param string) string {
	return op + ":" + param
}

// Nop never stores anything. It backs github.cache.backend: none.
type Nop[T any] struct{}

// Get always misses.
func (Nop[T]) Get(context.Context, string) (T, bool) {
	var zero T
	return zero, false
}

// Set does nothing.
func (Nop[T]) Set(context.Context, string, T) {}

var _ Cache[int] = Nop[int]{}
