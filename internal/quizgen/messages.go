package quizgen

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/abhisek/ankiquiz/internal/deck"
	"github.com/abhisek/ankiquiz/internal/randutil"
	"github.com/abhisek/ankiquiz/internal/settings"
)

// cardFormatInstruction closes every card batch request.
const cardFormatInstruction = `IMPORTANT: Please provide the output strictly as a JSON array of objects, where each object has "front" and "back" string fields. Do not include any other text, preamble, or markdown formatting outside the JSON structure.`

// BuildQuestionMessage renders the question request. With ExposeOneSideOnly
// only the side being asked about is listed, so the answer never leaks.
// The listing is shuffled with rng on every call.
func BuildQuestionMessage(vocab []deck.VocabItem, s settings.QuizSettings, rng *rand.Rand) string {
	lines := make([]string, 0, len(vocab))
	for _, item := range vocab {
		switch {
		case !s.ExposeOneSideOnly:
			lines = append(lines, formatCard(item))
		case s.Direction == settings.FrontToBack:
			lines = append(lines, item.Front)
		default:
			lines = append(lines, item.Back)
		}
	}
	randutil.Shuffle(rng, lines)

	heading := "Available cards:"
	if s.ExposeOneSideOnly {
		heading = "Cards (back side only):"
		if s.Direction == settings.FrontToBack {
			heading = "Cards (front side only):"
		}
	}

	return fmt.Sprintf("%s\n\nQuiz direction: %s\n%s\n%s",
		s.PromptsConfig.QuestionInstructions, s.Direction, heading, strings.Join(lines, "\n"))
}

// BuildEvaluationMessage embeds the question and the learner's answer ahead
// of the evaluation instructions.
func BuildEvaluationMessage(prompt, answer, instructions string) string {
	return fmt.Sprintf("The question was:\n\"%s\"\n\nThe student's answer:\n\"%s\"\n\n%s",
		prompt, answer, instructions)
}

// BuildCardBatchMessage appends the optional existing cards and the strict
// JSON output instruction to a free-form request.
func BuildCardBatchMessage(prompt string, contextCards []deck.VocabItem) string {
	var b strings.Builder
	b.WriteString(prompt)
	if len(contextCards) > 0 {
		b.WriteString("\n\nHere is the set of existing Anki cards:\n")
		for i, c := range contextCards {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(formatCard(c))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(cardFormatInstruction)
	return b.String()
}

func formatCard(c deck.VocabItem) string {
	return fmt.Sprintf("Front: %s | Back: %s", c.Front, c.Back)
}
