// Package inline answers inline queries: it parses the text, looks the
// intent up on GitHub, and renders the answer or explains why it is empty.
package inline

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/ghinline/internal/classify"
	"github.com/flemzord/ghinline/internal/github"
	"github.com/flemzord/ghinline/internal/metrics"
	"github.com/flemzord/ghinline/internal/query"
	"github.com/flemzord/ghinline/internal/render"
)

// Reasons shown when an answer has no results.
const (
	ReasonPrompt   = "Enter username/repo to search"
	ReasonNotFound = "No repositories found"
)

// Lookup is the subset of *github.Client the handler needs.
type Lookup interface {
	SearchRepositories(ctx context.Context, query string) ([]github.Repository, error)
	UserRepositories(ctx context.Context, username string) ([]github.Repository, error)
	Repository(ctx context.Context, owner, name string) (*github.Repository, error)
}

// Outcome says how an inline query was resolved.
type Outcome int

// Outcomes.
const (
	OutcomePrompt Outcome = iota
	OutcomeNotFound
	OutcomeError
	OutcomeResults
)

func (o Outcome) String() string {
	switch o {
	case OutcomePrompt:
		return "prompt"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeError:
		return "error"
	case OutcomeResults:
		return "results"
	default:
		return "unknown"
	}
}

// StartParameter is the deep-link parameter of the button shown with an
// empty answer. It is empty when the answer has results.
func (o Outcome) StartParameter() string {
	switch o {
	case OutcomePrompt:
		return "help"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeError:
		return "error"
	default:
		return ""
	}
}

// Answer is the result of one inline query. Reason is set exactly when
// Results is empty.
type Answer struct {
	Results []render.Result
	Reason  string
	Outcome Outcome
	Intent  query.Intent
}

// Handler resolves inline queries. It holds no per-query state and is safe
// for concurrent use if its Lookup is.
type Handler struct {
	lookup  Lookup
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewHandler creates a Handler. m may be nil.
func NewHandler(lookup Lookup, m *metrics.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		lookup:  lookup,
		metrics: m,
		logger:  logger.With("component", "inline"),
		tracer:  otel.Tracer("github.com/flemzord/ghinline/internal/inline"),
	}
}

// Handle resolves raw inline-query text. Lookup failures never escape:
// they are classified into the answer's Reason.
func (h *Handler) Handle(ctx context.Context, raw string) Answer {
	start := time.Now()
	intent := query.Parse(raw)

	ctx, span := h.tracer.Start(ctx, "inline.handle", trace.WithAttributes(
		attribute.String("inline.kind", intent.Kind.String()),
		attribute.Bool("inline.valid", intent.Valid),
	))
	defer span.End()

	answer := h.resolve(ctx, intent)
	answer.Intent = intent

	span.SetAttributes(
		attribute.String("inline.outcome", answer.Outcome.String()),
		attribute.Int("inline.results", len(answer.Results)),
	)
	h.metrics.RecordInline(intent.Kind.String(), answer.Outcome.String(), time.Since(start))
	h.logger.Info("inline query answered",
		"query", raw,
		"kind", intent.Kind.String(),
		"outcome", answer.Outcome.String(),
		"results", len(answer.Results),
	)
	return answer
}

func (h *Handler) resolve(ctx context.Context, intent query.Intent) Answer {
	if !intent.Valid {
		return Answer{Reason: ReasonPrompt, Outcome: OutcomePrompt}
	}

	repos, err := h.fetch(ctx, intent)
	if err != nil {
		h.logger.Error("inline lookup failed", "kind", intent.Kind.String(), "query", intent.Query, "error", err)
		return Answer{Reason: classify.Message(err), Outcome: OutcomeError}
	}
	if len(repos) == 0 {
		return Answer{Reason: ReasonNotFound, Outcome: OutcomeNotFound}
	}
	return Answer{Results: render.BuildResults(repos), Outcome: OutcomeResults}
}

func (h *Handler) fetch(ctx context.Context, intent query.Intent) ([]github.Repository, error) {
	switch intent.Kind {
	case query.KindExact:
		repo, err := h.lookup.Repository(ctx, intent.Owner, intent.Repo)
		if err != nil {
			return nil, err
		}
		if repo != nil {
			return []github.Repository{*repo}, nil
		}
		h.logger.Debug("exact repository absent, searching", "query", intent.Query)
		return h.lookup.SearchRepositories(ctx, intent.Query)
	case query.KindRepo:
		return h.lookup.SearchRepositories(ctx, intent.Query)
	default:
		return h.lookup.UserRepositories(ctx, intent.Owner)
	}
}
