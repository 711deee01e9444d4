// Package session runs the quiz loop: load vocabulary once, ask a question,
// take an answer, show the verdict, repeat.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/ankiquiz/internal/deck"
	"github.com/abhisek/ankiquiz/internal/quizgen"
	"github.com/abhisek/ankiquiz/internal/settings"
	"github.com/abhisek/ankiquiz/internal/store"
)

var (
	ErrEmptyAnswer       = errors.New("answer is empty")
	ErrNoVocabulary      = errors.New("no cards with both a front and a back were found; check the deck filter")
	ErrBusy              = errors.New("a request is already in progress")
	ErrInvalidTransition = errors.New("action not allowed in the current phase")
)

// VocabSource loads the cards questions are drawn from.
type VocabSource interface {
	LoadVocabulary(ctx context.Context, maxCount int, deckFilter, storeURL string) ([]deck.VocabItem, error)
}

// Quizzer writes questions and judges answers.
type Quizzer interface {
	GenerateQuestion(ctx context.Context, vocab []deck.VocabItem, s settings.QuizSettings) (quizgen.Question, error)
	EvaluateAnswer(ctx context.Context, prompt, answer string, s settings.QuizSettings) (quizgen.Evaluation, error)
}

// AnswerRecorder persists evaluated answers. store.EventRepo satisfies it.
type AnswerRecorder interface {
	AppendAnswer(ctx context.Context, data store.AnswerEventData) error
}

// Machine is the quiz state machine. All methods are safe for concurrent
// use; at most one network call runs at a time and overlapping triggers
// get ErrBusy.
type Machine struct {
	vocabSrc VocabSource
	quizzer  Quizzer
	recorder AnswerRecorder
	logger   *slog.Logger

	mu        sync.Mutex
	sessionID string
	phase     Phase
	vocab     []deck.VocabItem
	question  quizgen.Question
	answer    string
	eval      *quizgen.Evaluation
	round     int
	answered  int
	passed    int
	lastErr   error
}

// Option configures a Machine.
type Option func(*Machine)

// WithRecorder records every evaluated answer.
func WithRecorder(r AnswerRecorder) Option {
	return func(m *Machine) { m.recorder = r }
}

// WithLogger sets the logger for recorder failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// New creates an idle Machine.
func New(vocabSrc VocabSource, quizzer Quizzer, opts ...Option) *Machine {
	m := &Machine{
		vocabSrc:  vocabSrc,
		quizzer:   quizzer,
		logger:    slog.Default(),
		sessionID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Snapshot returns a copy of the visible state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{
		SessionID: m.sessionID,
		Phase:     m.phase,
		VocabSize: len(m.vocab),
		Round:     m.round,
		Question:  m.question.Raw,
		Prompt:    m.question.Prompt,
		Answer:    m.answer,
		Passed:    m.passed,
		Answered:  m.answered,
	}
	if m.eval != nil {
		s.Result = string(m.eval.Result)
		s.Feedback = m.eval.Feedback
		s.Raw = m.eval.Raw
	}
	if m.lastErr != nil {
		s.Error = m.lastErr.Error()
	}
	return s
}

// Vocabulary returns a copy of the cached vocabulary.
func (m *Machine) Vocabulary() []deck.VocabItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]deck.VocabItem(nil), m.vocab...)
}

// begin moves into an in-flight phase if the current phase is one of from.
// It returns the phase to restore on failure.
func (m *Machine) begin(to Phase, from ...Phase) (Phase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase.InFlight() {
		return m.phase, ErrBusy
	}
	allowed := len(from) == 0
	for _, p := range from {
		if m.phase == p {
			allowed = true
			break
		}
	}
	if !allowed {
		return m.phase, fmt.Errorf("%w: cannot go from %s to %s", ErrInvalidTransition, m.phase, to)
	}
	prior := m.phase
	m.phase = to
	m.lastErr = nil
	return prior, nil
}

// fail restores prior and remembers err for the snapshot.
func (m *Machine) fail(prior Phase, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phase = prior
	m.lastErr = err
	return err
}

func (m *Machine) load(ctx context.Context, s settings.QuizSettings) ([]deck.VocabItem, error) {
	vocab, err := m.vocabSrc.LoadVocabulary(ctx, s.MaxWords, s.DeckFilter, s.StoreURL)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	if len(vocab) == 0 {
		return nil, ErrNoVocabulary
	}
	return vocab, nil
}

// RequestQuestion starts a round from Idle, Answered, or AwaitingAnswer
// (skipping the open question). Vocabulary is loaded only when none is
// cached. On failure the machine returns to the phase it started from with
// the previous question and verdict intact.
func (m *Machine) RequestQuestion(ctx context.Context, s settings.QuizSettings) error {
	m.mu.Lock()
	needVocab := len(m.vocab) == 0
	m.mu.Unlock()

	first := QuestionPending
	if needVocab {
		first = VocabLoading
	}
	prior, err := m.begin(first, Idle, Answered, AwaitingAnswer)
	if err != nil {
		return err
	}

	if needVocab {
		vocab, err := m.load(ctx, s)
		if err != nil {
			return m.fail(prior, err)
		}
		m.mu.Lock()
		m.vocab = vocab
		m.phase = QuestionPending
		m.mu.Unlock()
	}

	vocab := m.Vocabulary()
	q, err := m.quizzer.GenerateQuestion(ctx, vocab, s)
	if err != nil {
		return m.fail(prior, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.question = q
	m.answer = ""
	m.eval = nil
	m.round++
	m.phase = AwaitingAnswer
	return nil
}

// Skip discards the open question and asks for another.
func (m *Machine) Skip(ctx context.Context, s settings.QuizSettings) error {
	if p := m.Phase(); p != AwaitingAnswer {
		if p.InFlight() {
			return ErrBusy
		}
		return fmt.Errorf("%w: nothing to skip in %s", ErrInvalidTransition, p)
	}
	return m.RequestQuestion(ctx, s)
}

// SubmitAnswer sends the learner's answer for evaluation. A blank answer is
// rejected without any request and the machine stays in AwaitingAnswer.
func (m *Machine) SubmitAnswer(ctx context.Context, s settings.QuizSettings, answer string) error {
	m.mu.Lock()
	if m.phase == AwaitingAnswer && strings.TrimSpace(answer) == "" {
		m.mu.Unlock()
		return ErrEmptyAnswer
	}
	m.mu.Unlock()

	prior, err := m.begin(Evaluating, AwaitingAnswer)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.answer = answer
	q := m.question
	m.mu.Unlock()

	prompt := q.Prompt
	if prompt == "" {
		prompt = q.Raw
	}
	eval, err := m.quizzer.EvaluateAnswer(ctx, prompt, answer, s)
	if err != nil {
		return m.fail(prior, err)
	}

	m.mu.Lock()
	m.eval = &eval
	m.answered++
	if eval.Passed() {
		m.passed++
	}
	m.phase = Answered
	data := store.AnswerEventData{
		SessionID: m.sessionID,
		Direction: string(s.Direction),
		Question:  prompt,
		Answer:    answer,
		Result:    string(eval.Result),
		Feedback:  eval.Feedback,
	}
	m.mu.Unlock()

	if m.recorder != nil {
		if err := m.recorder.AppendAnswer(context.WithoutCancel(ctx), data); err != nil {
			m.logger.Warn("failed to record answer", "session", data.SessionID, "error", err)
		}
	}
	return nil
}

// Reload replaces the cached vocabulary. The phase is unchanged afterwards;
// on failure the old vocabulary is kept.
func (m *Machine) Reload(ctx context.Context, s settings.QuizSettings) error {
	prior, err := m.begin(VocabLoading)
	if err != nil {
		return err
	}
	vocab, err := m.load(ctx, s)
	if err != nil {
		return m.fail(prior, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vocab = vocab
	m.phase = prior
	return nil
}

// Advance is the single "go on" trigger: first question from Idle, next
// question from Answered, submit from AwaitingAnswer when input is not
// blank. It returns what it did. In-flight phases return ErrBusy.
func (m *Machine) Advance(ctx context.Context, s settings.QuizSettings, input string) (Action, error) {
	p := m.Phase()
	if p.InFlight() {
		return ActionNone, ErrBusy
	}
	switch advanceTable[p] {
	case ActionQuestion:
		return ActionQuestion, m.RequestQuestion(ctx, s)
	case ActionSubmit:
		if strings.TrimSpace(input) == "" {
			return ActionNone, nil
		}
		return ActionSubmit, m.SubmitAnswer(ctx, s, input)
	}
	return ActionNone, nil
}
