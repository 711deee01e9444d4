package quizgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/abhisek/ankiquiz/internal/llm"
)

// excerptLen is how much of a bad reply a ParseError carries.
const excerptLen = 100

// CardDraft is one generated card before it is saved.
type CardDraft struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// CardBatchSchema validates a generated card batch.
var CardBatchSchema = &llm.Schema{
	Name:        "card-batch",
	Description: "A list of flashcards with front and back text",
	Definition: map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"front": map[string]any{"type": "string"},
				"back":  map[string]any{"type": "string"},
			},
			"required": []any{"front", "back"},
		},
	},
}

// ParseError reports a reply that could not be decoded as a card batch.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model response as JSON: %v. Response: %s...", e.Err, e.Excerpt())
}

func (e *ParseError) Unwrap() error { return e.Err }

// Excerpt returns the first characters of the raw reply.
func (e *ParseError) Excerpt() string {
	r := []rune(e.Raw)
	if len(r) > excerptLen {
		r = r[:excerptLen]
	}
	return string(r)
}

var (
	fencedJSON = regexp.MustCompile("(?s)```json\r?\n(.*?)\r?\n```")
	fencedAny  = regexp.MustCompile("(?s)```[^\n]*\r?\n(.*?)\r?\n```")
)

// stripFence returns the interior of the first fenced code block, preferring
// a json-tagged one, or the trimmed text when there is none.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := fencedAny.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// ParseCardBatch decodes a reply holding a JSON array of {front, back}
// objects, optionally wrapped in a fenced code block. Anything else is a
// *ParseError; an unusable reply never yields an empty batch silently.
func ParseCardBatch(text string) ([]CardDraft, error) {
	body := stripFence(text)

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}
	if _, ok := doc.([]any); !ok {
		return nil, &ParseError{Raw: text, Err: errors.New("model response is not an array")}
	}
	if err := llm.ValidateJSON(CardBatchSchema, json.RawMessage(body)); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}

	var cards []CardDraft
	if err := json.Unmarshal([]byte(body), &cards); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}
	return cards, nil
}
