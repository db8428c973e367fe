package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// secretHeader carries the webhook secret_token on every Telegram request.
const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookReceiver processes incoming Telegram webhook payloads.
// It implements gateway.WebhookHandler. The secret token is verified by the
// dispatcher before HandleWebhook runs.
type WebhookReceiver struct {
	handle UpdateHandler
	logger *slog.Logger
}

// NewWebhookReceiver creates a new WebhookReceiver.
func NewWebhookReceiver(handle UpdateHandler, logger *slog.Logger) *WebhookReceiver {
	return &WebhookReceiver{handle: handle, logger: logger}
}

// HandleWebhook parses the update and handles it before the HTTP response
// is written.
func (w *WebhookReceiver) HandleWebhook(ctx context.Context, _ string, body []byte, _ http.Header) error {
	var update Update
	if err := json.Unmarshal(body, &update); err != nil {
		return errors.New("telegram: invalid update JSON: " + err.Error())
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), updateTimeout)
	defer cancel()

	w.logger.Debug("webhook update received", "update_id", update.UpdateID)
	w.handle(ctx, &update)
	return nil
}
