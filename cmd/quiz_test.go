package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/ankiquiz/internal/deck"
	"github.com/abhisek/ankiquiz/internal/quizgen"
	"github.com/abhisek/ankiquiz/internal/session"
	"github.com/abhisek/ankiquiz/internal/settings"
)

type stubVocab []deck.VocabItem

func (v stubVocab) LoadVocabulary(context.Context, int, string, string) ([]deck.VocabItem, error) {
	return v, nil
}

type stubQuizzer struct {
	questions int
	answers   []string
}

func (q *stubQuizzer) GenerateQuestion(context.Context, []deck.VocabItem, settings.QuizSettings) (quizgen.Question, error) {
	q.questions++
	return quizgen.ParseQuestion("PROMPT: What is 'perro'?"), nil
}

func (q *stubQuizzer) EvaluateAnswer(_ context.Context, _, answer string, _ settings.QuizSettings) (quizgen.Evaluation, error) {
	q.answers = append(q.answers, answer)
	if answer == "dog" {
		return quizgen.ParseEvaluation("RESULT: PASS\nFEEDBACK: Right."), nil
	}
	return quizgen.ParseEvaluation("RESULT: FAIL\nFEEDBACK: It means dog."), nil
}

func TestRunLineQuiz(t *testing.T) {
	q := &stubQuizzer{}
	m := session.New(stubVocab{{Front: "perro", Back: "dog"}}, q)

	in := strings.NewReader("\ndog\n\ncat\n:q\n")
	var out bytes.Buffer
	require.NoError(t, runLineQuiz(context.Background(), m, settings.Defaults(), in, &out))

	text := out.String()
	assert.Contains(t, text, "Q1. What is 'perro'?")
	assert.Contains(t, text, "PASS  Right.")
	assert.Contains(t, text, "FAIL  It means dog.")
	assert.Contains(t, text, "Session over: 1 of 2 passed.")

	// The blank line while a question was open sent nothing.
	assert.Equal(t, []string{"dog", "cat"}, q.answers)
	assert.Equal(t, 2, q.questions)
}

func TestRunLineQuiz_SkipAsksAgain(t *testing.T) {
	q := &stubQuizzer{}
	m := session.New(stubVocab{{Front: "perro", Back: "dog"}}, q)

	var out bytes.Buffer
	require.NoError(t, runLineQuiz(context.Background(), m, settings.Defaults(), strings.NewReader(":skip\n"), &out))

	assert.Equal(t, 2, q.questions)
	assert.Empty(t, q.answers)
	assert.Contains(t, out.String(), "Q2.")
}

func TestRunLineQuiz_NoVocabulary(t *testing.T) {
	m := session.New(stubVocab{}, &stubQuizzer{})

	var out bytes.Buffer
	err := runLineQuiz(context.Background(), m, settings.Defaults(), strings.NewReader(""), &out)
	assert.ErrorIs(t, err, session.ErrNoVocabulary)
}
