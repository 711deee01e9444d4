// Package quizgen encodes quiz requests for a text model and decodes its
// replies: question prompts, PASS/FAIL verdicts and card batches.
package quizgen

import "strings"

// Line markers the model is instructed to use.
const (
	promptMarker   = "PROMPT:"
	resultMarker   = "RESULT:"
	feedbackMarker = "FEEDBACK:"
)

// Verdict is the outcome of an answer evaluation.
type Verdict string

const (
	Pass Verdict = "PASS"
	Fail Verdict = "FAIL"
)

// Question is a decoded question reply. Raw is always the full reply so it
// can be shown even when no prompt line was found.
type Question struct {
	Raw    string `json:"question"`
	Prompt string `json:"prompt"`
}

// Evaluation is a decoded evaluation reply.
type Evaluation struct {
	Raw      string  `json:"feedbackFull"`
	Result   Verdict `json:"result"`
	Feedback string  `json:"feedbackText"`
}

// Passed reports whether the answer was judged correct.
func (e Evaluation) Passed() bool {
	return e.Result == Pass
}

// ParseQuestion extracts the text after a line starting with "PROMPT:".
// When several lines match, the last one wins. No match leaves Prompt empty.
func ParseQuestion(text string) Question {
	q := Question{Raw: text}
	for _, line := range strings.Split(text, "\n") {
		if rest, ok := strings.CutPrefix(line, promptMarker); ok {
			q.Prompt = strings.TrimSpace(rest)
		}
	}
	return q
}

// ParseEvaluation reads the RESULT and FEEDBACK lines. A RESULT value other
// than exactly PASS or FAIL is ignored, so the verdict defaults to FAIL.
func ParseEvaluation(text string) Evaluation {
	e := Evaluation{Raw: text, Result: Fail}
	for _, line := range strings.Split(text, "\n") {
		if rest, ok := strings.CutPrefix(line, resultMarker); ok {
			switch v := Verdict(strings.TrimSpace(rest)); v {
			case Pass, Fail:
				e.Result = v
			}
		} else if rest, ok := strings.CutPrefix(line, feedbackMarker); ok {
			e.Feedback = strings.TrimSpace(rest)
		}
	}
	return e
}
