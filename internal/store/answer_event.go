package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const answerEventsTable = "answer_events"

var answerEventColumns = []string{
	"id", "sequence", "timestamp", "session_id", "direction", "question", "answer", "result", "feedback",
}

func (r *eventRepo) AppendAnswer(ctx context.Context, data AnswerEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	query, args := sqlite.Insert(answerEventsTable).
		Columns(answerEventColumns[1:]...).
		Values(seqNum, time.Now().UnixMilli(), data.SessionID, data.Direction,
			data.Question, data.Answer, data.Result, data.Feedback).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAnswers(ctx context.Context, opts QueryOpts) ([]AnswerEvent, error) {
	sel := sqlite.Select(answerEventColumns...).From(entsql.Table(answerEventsTable))
	query, args := filterEvents(sel, opts, map[string]string{"session_id": opts.Session}).
		OrderBy(entsql.Desc("sequence")).
		Query()

	var out []AnswerEvent
	err := queryRows(ctx, r.drv, query, args, func(rows *entsql.Rows) error {
		var e AnswerEvent
		var ts int64
		if err := rows.Scan(&e.ID, &e.Sequence, &ts, &e.SessionID, &e.Direction,
			&e.Question, &e.Answer, &e.Result, &e.Feedback); err != nil {
			return fmt.Errorf("scan answer event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummary, error) {
	sel := sqlite.Select(
		"session_id",
		entsql.Min("timestamp"),
		entsql.Count("*"),
		"SUM(CASE WHEN result = 'PASS' THEN 1 ELSE 0 END)",
	).
		From(entsql.Table(answerEventsTable)).
		GroupBy("session_id").
		OrderBy("MIN(sequence) DESC")
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	var out []SessionSummary
	err := queryRows(ctx, r.drv, query, args, func(rows *entsql.Rows) error {
		var s SessionSummary
		var ts int64
		if err := rows.Scan(&s.SessionID, &ts, &s.Answered, &s.Passed); err != nil {
			return fmt.Errorf("scan session summary: %w", err)
		}
		s.Started = time.UnixMilli(ts)
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}
	return out, nil
}
