package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // LLM events only; empty matches all
	Session string    // answer events only; empty matches all
}

// LLMRequestEventData captures a single LLM request.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request.
type LLMEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM calls by purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// AnswerEventData captures one evaluated quiz answer.
type AnswerEventData struct {
	SessionID string
	Direction string
	Question  string
	Answer    string
	Result    string
	Feedback  string
}

// AnswerEvent is a stored quiz answer.
type AnswerEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	AnswerEventData
}

// SessionSummary aggregates answers per quiz session.
type SessionSummary struct {
	SessionID string
	Started   time.Time
	Answered  int
	Passed    int
}

// EventRepo appends and queries the event logs.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)
	// GetLLMEvent returns nil when no event has the id.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	AppendAnswer(ctx context.Context, data AnswerEventData) error
	QueryAnswers(ctx context.Context, opts QueryOpts) ([]AnswerEvent, error)
	QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummary, error)
}

// SettingsRepo stores the settings blob. There is only ever one.
type SettingsRepo interface {
	// Load returns the stored blob, or nil data when nothing was saved.
	Load(ctx context.Context) (data []byte, version int, err error)
	Save(ctx context.Context, data []byte, version int) error
	Delete(ctx context.Context) error
}
