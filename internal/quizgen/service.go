package quizgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/abhisek/ankiquiz/internal/deck"
	"github.com/abhisek/ankiquiz/internal/llm"
	"github.com/abhisek/ankiquiz/internal/settings"
	"github.com/abhisek/ankiquiz/internal/store"
)

// Token caps per request kind.
const (
	QuestionMaxTokens   = 1024
	EvaluationMaxTokens = 1024
	CardsMaxTokens      = 4096
)

// Purpose labels attached to each call for the LLM event log.
const (
	PurposeQuestion   = "question-gen"
	PurposeEvaluation = "evaluation"
	PurposeCards      = "card-gen"
)

// ErrAuth is returned before any request when no API key is configured for
// the selected provider.
var ErrAuth = errors.New("no API key configured: set one in settings or the environment")

// ProviderFactory builds a provider for a resolved configuration.
type ProviderFactory func(ctx context.Context, cfg llm.Config) (llm.Provider, error)

// Service runs the three quiz exchanges against a text model. Every call is
// a single stateless request; no conversation history is kept.
type Service struct {
	base    llm.Config
	factory ProviderFactory
	rng     *rand.Rand

	mu       sync.Mutex
	cachedAt llm.Config
	cached   llm.Provider
}

// Option configures a Service.
type Option func(*Service)

// WithProviderFactory replaces how providers are built. Tests use it to
// inject an llm.MockProvider.
func WithProviderFactory(f ProviderFactory) Option {
	return func(s *Service) { s.factory = f }
}

// WithEventRepo logs every request to repo.
func WithEventRepo(repo store.EventRepo) Option {
	return func(s *Service) { s.factory = defaultFactory(repo) }
}

// WithRand sets the source used to shuffle the card listing.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rng = r }
}

// NewService creates a Service. base supplies provider defaults and
// environment keys; per-call settings override provider, model and key.
func NewService(base llm.Config, opts ...Option) *Service {
	s := &Service{base: base, factory: defaultFactory(nil)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultFactory(repo store.EventRepo) ProviderFactory {
	return func(ctx context.Context, cfg llm.Config) (llm.Provider, error) {
		if cfg.Provider != llm.ProviderMock {
			return llm.NewProvider(ctx, cfg, repo)
		}
		var p llm.Provider = NewOfflineProvider()
		if repo != nil {
			p = llm.WithLogging(p, llm.ProviderMock, repo)
		}
		return p, nil
	}
}

// ConfigFor resolves the LLM configuration for s. A key in the settings
// wins over one from the environment.
func (svc *Service) ConfigFor(s settings.QuizSettings) (llm.Config, error) {
	cfg := svc.base.WithOverrides(s.Provider, s.Model, s.APIKey)
	if cfg.Provider != llm.ProviderMock && cfg.APIKey() == "" {
		return cfg, ErrAuth
	}
	return cfg, nil
}

// provider returns a provider for cfg, reusing the last one built when the
// configuration has not changed.
func (svc *Service) provider(ctx context.Context, cfg llm.Config) (llm.Provider, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.cached != nil && svc.cachedAt == cfg {
		return svc.cached, nil
	}
	p, err := svc.factory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc.cached, svc.cachedAt = p, cfg
	return p, nil
}

func (svc *Service) complete(ctx context.Context, s settings.QuizSettings, purpose string, req llm.Request) (string, error) {
	cfg, err := svc.ConfigFor(s)
	if err != nil {
		return "", err
	}
	p, err := svc.provider(ctx, cfg)
	if err != nil {
		return "", err
	}

	ctx = llm.WithPurpose(ctx, purpose)
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	resp, err := p.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", purpose, err)
	}
	return resp.Text, nil
}

// GenerateQuestion asks the model for one practice question about vocab.
// A reply without a PROMPT line is not an error; the returned Prompt is
// empty and Raw holds the reply.
func (svc *Service) GenerateQuestion(ctx context.Context, vocab []deck.VocabItem, s settings.QuizSettings) (Question, error) {
	msg := BuildQuestionMessage(vocab, s, svc.rng)
	text, err := svc.complete(ctx, s, PurposeQuestion,
		llm.UserRequest(s.PromptsConfig.SystemPrompt, msg, QuestionMaxTokens))
	if err != nil {
		return Question{}, err
	}
	return ParseQuestion(text), nil
}

// EvaluateAnswer asks the model to judge answer against prompt.
func (svc *Service) EvaluateAnswer(ctx context.Context, prompt, answer string, s settings.QuizSettings) (Evaluation, error) {
	msg := BuildEvaluationMessage(prompt, answer, s.PromptsConfig.EvaluationInstructions)
	text, err := svc.complete(ctx, s, PurposeEvaluation,
		llm.UserRequest(s.PromptsConfig.SystemPrompt, msg, EvaluationMaxTokens))
	if err != nil {
		return Evaluation{}, err
	}
	return ParseEvaluation(text), nil
}

// GenerateCards asks the model for a batch of new cards. No system prompt
// is sent.
func (svc *Service) GenerateCards(ctx context.Context, prompt string, contextCards []deck.VocabItem, s settings.QuizSettings) ([]CardDraft, error) {
	msg := BuildCardBatchMessage(prompt, contextCards)
	text, err := svc.complete(ctx, s, PurposeCards, llm.UserRequest("", msg, CardsMaxTokens))
	if err != nil {
		return nil, err
	}
	return ParseCardBatch(text)
}
