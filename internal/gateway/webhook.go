package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

// maxWebhookBody caps webhook payloads. Telegram updates are far smaller.
const maxWebhookBody = 1 << 20

// WebhookHandler processes a verified webhook payload.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, source string, body []byte, headers http.Header) error
}

// Verifier authenticates a webhook request before it is dispatched.
type Verifier func(body []byte, headers http.Header) bool

// HMACVerifier checks an X-Signature-256 "sha256=<hex>" HMAC of the body.
func HMACVerifier(secret string) Verifier {
	return func(body []byte, headers http.Header) bool {
		return validateHMAC(body, headers.Get("X-Signature-256"), secret)
	}
}

// HeaderTokenVerifier compares a shared secret carried in header, as
// Telegram does with X-Telegram-Bot-Api-Secret-Token.
func HeaderTokenVerifier(header, token string) Verifier {
	return func(_ []byte, headers http.Header) bool {
		return constantTimeEqual(headers.Get(header), token)
	}
}

type webhookEntry struct {
	handler WebhookHandler
	verify  Verifier
}

// WebhookDispatcher routes incoming webhooks to registered handlers.
type WebhookDispatcher struct {
	mu       sync.RWMutex
	handlers map[string]webhookEntry
	logger   *slog.Logger
}

// NewWebhookDispatcher creates a ready-to-use dispatcher.
func NewWebhookDispatcher(logger *slog.Logger) *WebhookDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookDispatcher{
		handlers: make(map[string]webhookEntry),
		logger:   logger,
	}
}

// Register adds a handler for source. A nil verify accepts every request.
func (d *WebhookDispatcher) Register(source string, h WebhookHandler, verify Verifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[source] = webhookEntry{handler: h, verify: verify}
}

// Unregister removes the handler for source.
func (d *WebhookDispatcher) Unregister(source string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, source)
}

// ServeHTTP implements http.Handler. It extracts the source from the chi URL
// param, verifies the request, and dispatches to the registered handler.
func (d *WebhookDispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	source := chi.URLParam(r, "source")
	if source == "" {
		http.Error(w, "missing source", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	d.mu.RLock()
	entry, ok := d.handlers[source]
	d.mu.RUnlock()

	if !ok {
		d.logger.Warn("webhook received for unregistered source", "source", source)
		http.Error(w, "unknown source", http.StatusNotFound)
		return
	}

	if entry.verify != nil && !entry.verify(body, r.Header) {
		d.logger.Warn("webhook verification failed", "source", source)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	if err := entry.handler.HandleWebhook(r.Context(), source, body, r.Header); err != nil {
		d.logger.Error("webhook handler failed", "source", source, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// validateHMAC checks HMAC-SHA256 signature in constant time.
func validateHMAC(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
