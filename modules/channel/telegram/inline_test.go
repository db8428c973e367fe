package telegram

import (
	"context"
	"testing"

	"github.com/flemzord/ghinline/internal/inline"
	"github.com/flemzord/ghinline/internal/render"
)

func sampleResults() []render.Result {
	return []render.Result{
		{ID: "0", Title: "golang/go", Description: "The Go programming language", ThumbnailURL: "https://avatars.example/golang", MessageText: "<b>golang/go</b>"},
		{ID: "1", Title: "golang/tools", Description: "No description", MessageText: "<b>golang/tools</b>"},
	}
}

func TestBuildAnswer_Results(t *testing.T) {
	t.Parallel()

	cfg := Config{CacheTime: 300, IsPersonal: true}
	req := buildAnswer("q1", inline.Answer{Results: sampleResults(), Outcome: inline.OutcomeResults}, cfg)

	if req.InlineQueryID != "q1" || req.CacheTime != 300 || !req.IsPersonal {
		t.Errorf("request = %+v", req)
	}
	if req.Button != nil {
		t.Errorf("button = %+v, want nil with results", req.Button)
	}
	if len(req.Results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(req.Results))
	}

	a := req.Results[0]
	if a.Type != "article" || a.ID != "0" || a.Title != "golang/go" {
		t.Errorf("article = %+v", a)
	}
	if a.ThumbnailURL != "https://avatars.example/golang" {
		t.Errorf("ThumbnailURL = %q", a.ThumbnailURL)
	}
	if a.InputMessageContent.ParseMode != ParseModeHTML || a.InputMessageContent.MessageText != "<b>golang/go</b>" {
		t.Errorf("content = %+v", a.InputMessageContent)
	}
}

func TestBuildAnswer_EmptyCarriesButton(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		answer  inline.Answer
		text    string
		startAt string
	}{
		{"prompt", inline.Answer{Reason: inline.ReasonPrompt, Outcome: inline.OutcomePrompt}, "Enter username/repo to search", "help"},
		{"not found", inline.Answer{Reason: inline.ReasonNotFound, Outcome: inline.OutcomeNotFound}, "No repositories found", "not_found"},
		{"error", inline.Answer{Reason: "Request timeout. Please try again", Outcome: inline.OutcomeError}, "Request timeout. Please try again", "error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := buildAnswer("q", tc.answer, Config{CacheTime: 300})
			if req.Results == nil || len(req.Results) != 0 {
				t.Errorf("results = %v, want empty non-nil", req.Results)
			}
			if req.Button == nil {
				t.Fatal("button missing")
			}
			if req.Button.Text != tc.text || req.Button.StartParameter != tc.startAt {
				t.Errorf("button = %+v", req.Button)
			}
			if req.CacheTime != emptyAnswerCacheTime {
				t.Errorf("CacheTime = %d, want %d", req.CacheTime, emptyAnswerCacheTime)
			}
		})
	}
}

func TestHandleInlineQuery_AnswersWithPipeline(t *testing.T) {
	t.Parallel()

	api := newBotAPI(t)
	tg := newTestTelegram(t, api, Config{})
	answerer := &fakeAnswerer{answer: inline.Answer{Results: sampleResults(), Outcome: inline.OutcomeResults}}
	tg.SetAnswerer(answerer)

	tg.handleUpdate(context.Background(), &Update{
		UpdateID:    1,
		InlineQuery: &InlineQuery{ID: "q1", From: User{ID: 7}, Query: "golang"},
	})

	if got := answerer.seen(); len(got) != 1 || got[0] != "golang" {
		t.Errorf("answerer saw %v", got)
	}
	answers := api.sentAnswers()
	if len(answers) != 1 {
		t.Fatalf("answers = %d, want 1", len(answers))
	}
	if answers[0].InlineQueryID != "q1" || len(answers[0].Results) != 2 {
		t.Errorf("answer = %+v", answers[0])
	}
	if answers[0].CacheTime != DefaultCacheTime {
		t.Errorf("CacheTime = %d, want %d", answers[0].CacheTime, DefaultCacheTime)
	}
}

func TestHandleInlineQuery_NoAnswererPrompts(t *testing.T) {
	t.Parallel()

	api := newBotAPI(t)
	tg := newTestTelegram(t, api, Config{})

	tg.handleInlineQuery(context.Background(), &InlineQuery{ID: "q1", From: User{ID: 7}, Query: "golang"})

	answers := api.sentAnswers()
	if len(answers) != 1 || answers[0].Button == nil || answers[0].Button.StartParameter != "help" {
		t.Errorf("answers = %+v", answers)
	}
}

func TestHandleInlineQuery_AllowList(t *testing.T) {
	t.Parallel()

	api := newBotAPI(t)
	tg := newTestTelegram(t, api, Config{AllowUsers: []string{"@alice"}})
	answerer := &fakeAnswerer{answer: inline.Answer{Reason: inline.ReasonNotFound, Outcome: inline.OutcomeNotFound}}
	tg.SetAnswerer(answerer)

	tg.handleInlineQuery(context.Background(), &InlineQuery{ID: "denied", From: User{ID: 8, Username: "mallory"}, Query: "x"})
	tg.handleInlineQuery(context.Background(), &InlineQuery{ID: "allowed", From: User{ID: 9, Username: "Alice"}, Query: "x"})

	answers := api.sentAnswers()
	if len(answers) != 1 || answers[0].InlineQueryID != "allowed" {
		t.Errorf("answers = %+v, want only the allowed query", answers)
	}
	if len(answerer.seen()) != 1 {
		t.Errorf("answerer calls = %d, want 1", len(answerer.seen()))
	}
}

func TestHandleInlineQuery_RateLimited(t *testing.T) {
	t.Parallel()

	api := newBotAPI(t)
	tg := newTestTelegram(t, api, Config{RateLimit: rateLimit(1)})
	answerer := &fakeAnswerer{answer: inline.Answer{Results: sampleResults(), Outcome: inline.OutcomeResults}}
	tg.SetAnswerer(answerer)

	for _, id := range []string{"first", "second"} {
		tg.handleInlineQuery(context.Background(), &InlineQuery{ID: id, From: User{ID: 7}, Query: "golang"})
	}

	answers := api.sentAnswers()
	if len(answers) != 2 {
		t.Fatalf("answers = %d, want 2", len(answers))
	}
	if len(answers[0].Results) != 2 {
		t.Errorf("first answer should carry results: %+v", answers[0])
	}
	second := answers[1]
	if len(second.Results) != 0 || second.Button == nil || second.Button.StartParameter != "rate_limited" {
		t.Errorf("second answer = %+v, want throttled hint", second)
	}
	if len(answerer.seen()) != 1 {
		t.Errorf("throttled query reached the pipeline")
	}
}
