package telegram

import (
	"context"
	"strconv"

	"github.com/flemzord/ghinline/internal/channel"
	"github.com/flemzord/ghinline/internal/inline"
	"github.com/flemzord/ghinline/internal/query"
	"github.com/flemzord/ghinline/internal/render"
)

// emptyAnswerCacheTime keeps hint answers (prompt, error, throttled) from
// sticking in Telegram's cache as long as real results do.
const emptyAnswerCacheTime = 5

// rateLimitedText is the hint shown to a user who exceeded rate_limit.
const rateLimitedText = "Too many searches, try again in a minute"

// handleInlineQuery answers one inline query.
func (t *Telegram) handleInlineQuery(ctx context.Context, q *InlineQuery) {
	sender := channel.Sender{
		ID:       strconv.FormatInt(q.From.ID, 10),
		Username: q.From.Username,
	}
	if !t.allowList.IsAllowed(sender) {
		t.logger.Debug("inline query dropped", "sender", sender.ID, "error", channel.ErrDenied)
		return
	}

	var req AnswerInlineQueryRequest
	if err := t.limiter.Allow(sender.ID); err != nil {
		t.logger.Info("inline query throttled", "sender", sender.ID)
		req = AnswerInlineQueryRequest{
			InlineQueryID: q.ID,
			CacheTime:     emptyAnswerCacheTime,
			IsPersonal:    true,
			Button:        &InlineQueryResultsButton{Text: rateLimitedText, StartParameter: "rate_limited"},
		}
	} else {
		req = buildAnswer(q.ID, t.answer(ctx, q.Query), t.config)
	}

	if err := t.client.AnswerInlineQuery(ctx, req); err != nil {
		t.logger.Error("answerInlineQuery failed",
			"inline_query_id", q.ID,
			"error", err,
		)
	}
}

// answer runs the query pipeline, falling back to the prompt hint before
// the answerer is wired.
func (t *Telegram) answer(ctx context.Context, raw string) inline.Answer {
	if t.answerer == nil {
		t.logger.Warn("inline query received before answerer was set", "error", channel.ErrNoAnswerer)
		return inline.Answer{
			Reason:  inline.ReasonPrompt,
			Outcome: inline.OutcomePrompt,
			Intent:  query.Parse(raw),
		}
	}
	return t.answerer.Handle(ctx, raw)
}

// buildAnswer converts a pipeline answer into the Bot API request. An empty
// answer carries a button whose start parameter tells /start what happened.
func buildAnswer(queryID string, a inline.Answer, cfg Config) AnswerInlineQueryRequest {
	req := AnswerInlineQueryRequest{
		InlineQueryID: queryID,
		CacheTime:     cfg.CacheTime,
		IsPersonal:    cfg.IsPersonal,
		Results:       make([]InlineQueryResultArticle, 0, len(a.Results)),
	}

	if len(a.Results) == 0 {
		req.CacheTime = emptyAnswerCacheTime
		req.Button = &InlineQueryResultsButton{
			Text:           a.Reason,
			StartParameter: a.Outcome.StartParameter(),
		}
		return req
	}

	for _, r := range a.Results {
		req.Results = append(req.Results, article(r))
	}
	return req
}

func article(r render.Result) InlineQueryResultArticle {
	return InlineQueryResultArticle{
		Type:         "article",
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		ThumbnailURL: r.ThumbnailURL,
		InputMessageContent: InputTextMessageContent{
			MessageText: r.MessageText,
			ParseMode:   ParseModeHTML,
		},
	}
}
