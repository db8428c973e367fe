package telegram

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flemzord/ghinline/internal/core"
	"github.com/flemzord/ghinline/internal/github"
	"github.com/flemzord/ghinline/internal/inline"
	"github.com/flemzord/ghinline/internal/security"
)

const testToken = "123456:TEST_TOKEN"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func rateLimit(perMin int) security.RateLimitConfig {
	return security.RateLimitConfig{QueriesPerMin: perMin}
}

// botAPI is a fake Telegram Bot API that records what the bot sends.
type botAPI struct {
	t       *testing.T
	srv     *httptest.Server
	pending chan []Update

	mu       sync.Mutex
	answers  []AnswerInlineQueryRequest
	messages []SendMessageRequest
	commands []BotCommand
	webhook  *SetWebhookRequest
	deleted  bool
}

func newBotAPI(t *testing.T) *botAPI {
	t.Helper()
	api := &botAPI{t: t, pending: make(chan []Update, 8)}
	api.srv = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.srv.Close)
	return api
}

func (a *botAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	a.mu.Lock()
	defer a.mu.Unlock()

	switch method {
	case "getMe":
		writeJSON(a.t, w, APIResponse[User]{OK: true, Result: User{ID: 111, IsBot: true, FirstName: "Bot", Username: "gh_bot"}})
	case "getUpdates":
		select {
		case updates := <-a.pending:
			writeJSON(a.t, w, APIResponse[[]Update]{OK: true, Result: updates})
		default:
			a.mu.Unlock()
			select {
			case <-r.Context().Done():
			case <-time.After(20 * time.Millisecond):
			}
			a.mu.Lock()
			writeJSON(a.t, w, APIResponse[[]Update]{OK: true, Result: []Update{}})
		}
	case "answerInlineQuery":
		var req AnswerInlineQueryRequest
		_ = json.Unmarshal(body, &req)
		a.answers = append(a.answers, req)
		writeJSON(a.t, w, APIResponse[bool]{OK: true, Result: true})
	case "sendMessage":
		var req SendMessageRequest
		_ = json.Unmarshal(body, &req)
		a.messages = append(a.messages, req)
		writeJSON(a.t, w, APIResponse[Message]{OK: true, Result: Message{MessageID: 1, Chat: Chat{ID: req.ChatID}, Text: req.Text}})
	case "setMyCommands":
		var req SetMyCommandsRequest
		_ = json.Unmarshal(body, &req)
		a.commands = req.Commands
		writeJSON(a.t, w, APIResponse[bool]{OK: true, Result: true})
	case "setWebhook":
		var req SetWebhookRequest
		_ = json.Unmarshal(body, &req)
		a.webhook = &req
		writeJSON(a.t, w, APIResponse[bool]{OK: true, Result: true})
	case "deleteWebhook":
		a.deleted = true
		writeJSON(a.t, w, APIResponse[bool]{OK: true, Result: true})
	default:
		a.t.Errorf("unexpected API call: %s", r.URL.Path)
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (a *botAPI) sentAnswers() []AnswerInlineQueryRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]AnswerInlineQueryRequest(nil), a.answers...)
}

func (a *botAPI) sentMessages() []SendMessageRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]SendMessageRequest(nil), a.messages...)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// fakeAnswerer returns a fixed answer and records queries.
type fakeAnswerer struct {
	mu      sync.Mutex
	answer  inline.Answer
	queries []string
}

func (f *fakeAnswerer) Handle(_ context.Context, raw string) inline.Answer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, raw)
	return f.answer
}

func (f *fakeAnswerer) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

type fakeStatus struct{ rate *github.RateLimit }

func (f fakeStatus) RateLimitStatus(context.Context) *github.RateLimit { return f.rate }

// newTestTelegram returns a provisioned module talking to api, as if Start
// had already authenticated the bot.
func newTestTelegram(t *testing.T, api *botAPI, cfg Config) *Telegram {
	t.Helper()
	if cfg.Token == "" {
		cfg.Token = testToken
	}
	cfg.APIURL = api.srv.URL
	tg := &Telegram{config: cfg}
	if err := tg.Provision(core.NewAppContext(discardLogger())); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	tg.botUser = &User{ID: 111, IsBot: true, Username: "gh_bot"}
	return tg
}
