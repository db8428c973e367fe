// Package security keeps runtime secrets out of logs and throttles
// per-user inline traffic.
package security

import (
	"slices"
	"sync"
)

// Credential names used by ghinline.
const (
	CredBotToken      = "telegram.bot_token"
	CredGitHubToken   = "github.token"
	CredWebhookSecret = "telegram.webhook_secret"
	CredRedisPassword = "github.cache.redis.password"
	CredGatewayBearer = "gateway.auth.bearer_token"
)

// CredentialStore is a thread-safe store for the secrets loaded from
// configuration. Its values feed the log Redactor.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[string]string
}

// NewCredentialStore creates an empty credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		creds: make(map[string]string),
	}
}

// Set stores a credential, overwriting any previous value. Empty values
// are ignored so optional secrets can be set unconditionally.
func (s *CredentialStore) Set(name, value string) {
	if value == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[name] = value
}

// Get returns the credential value and true, or "" and false if not found.
func (s *CredentialStore) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.creds[name]
	return v, ok
}

// Names returns a sorted list of all credential names.
func (s *CredentialStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.creds))
	for name := range s.creds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Values returns all credential values. Order is not guaranteed.
func (s *CredentialStore) Values() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make([]string, 0, len(s.creds))
	for _, v := range s.creds {
		values = append(values, v)
	}
	return values
}
