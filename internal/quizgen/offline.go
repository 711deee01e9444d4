package quizgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/ankiquiz/internal/llm"
)

// NewOfflineProvider returns a mock provider that answers every request
// kind from the request text alone, so the quiz loop can be exercised with
// no network access.
func NewOfflineProvider() *llm.MockProvider {
	p := llm.NewMockProvider()
	p.Reply = offlineReply
	return p
}

func offlineReply(ctx context.Context, req llm.Request) (string, error) {
	var msg string
	if len(req.Messages) > 0 {
		msg = req.Messages[len(req.Messages)-1].Content
	}

	switch llm.PurposeFrom(ctx) {
	case PurposeQuestion:
		return fmt.Sprintf("PROMPT: What is the other side of %q?", firstListedCard(msg)), nil
	case PurposeEvaluation:
		if strings.Contains(msg, "The student's answer:\n\"\"") {
			return "RESULT: FAIL\nFEEDBACK: No answer was given.", nil
		}
		return "RESULT: PASS\nFEEDBACK: Offline mode accepts any answer.", nil
	case PurposeCards:
		return `[{"front": "hello", "back": "hola"}, {"front": "goodbye", "back": "adiós"}]`, nil
	}
	return "", &llm.ErrInvalidResponse{Err: fmt.Errorf("offline provider cannot answer purpose %q", llm.PurposeFrom(ctx))}
}

// firstListedCard returns the first line after the card listing heading.
func firstListedCard(msg string) string {
	lines := strings.Split(msg, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "Cards (") || line == "Available cards:" {
			if i+1 < len(lines) {
				return strings.TrimSpace(lines[i+1])
			}
		}
	}
	return "this card"
}
