// Package settings defines the learner-facing quiz configuration, its
// defaults, and the migrations applied to stored settings blobs.
package settings

import (
	"fmt"
	"strings"
)

// Direction is the side of the card the learner is asked about.
type Direction string

const (
	FrontToBack Direction = "front → back"
	BackToFront Direction = "back → front"
)

// ParseDirection accepts the canonical values plus the ASCII spellings
// "front->back" and "back->front".
func ParseDirection(s string) (Direction, error) {
	norm := strings.ToLower(strings.Join(strings.Fields(s), ""))
	switch norm {
	case "front→back", "front->back", "front":
		return FrontToBack, nil
	case "back→front", "back->front", "back":
		return BackToFront, nil
	}
	return "", fmt.Errorf("invalid direction %q: want %q or %q", s, FrontToBack, BackToFront)
}

// Provider names accepted in QuizSettings.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

var knownProviders = []string{ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter, ProviderMock}

// UILabels are the strings shown around the answer box.
type UILabels struct {
	AnswerLabel string `json:"answerLabel" yaml:"answerLabel"`
	Tip         string `json:"tip" yaml:"tip"`
}

// PromptsConfig is a named bundle of prompts that shapes how questions are
// asked and answers are judged.
type PromptsConfig struct {
	Name                   string   `json:"name" yaml:"name"`
	SystemPrompt           string   `json:"systemPrompt" yaml:"systemPrompt"`
	QuestionInstructions   string   `json:"questionInstructions" yaml:"questionInstructions"`
	EvaluationInstructions string   `json:"evaluationInstructions" yaml:"evaluationInstructions"`
	UILabels               UILabels `json:"uiLabels" yaml:"uiLabels"`
}

// QuizSettings is everything a quiz or review run needs to know.
type QuizSettings struct {
	PromptsConfig      PromptsConfig `json:"promptsConfig"`
	Direction          Direction     `json:"direction"`
	MaxWords           int           `json:"maxWords"`
	DeckFilter         string        `json:"deckFilter"`
	ExposeOneSideOnly  bool          `json:"exposeOneSideOnly"`
	Model              string        `json:"model"`
	ShowCardsReference bool          `json:"showCardsReference"`
	TextDirection      TextDirection `json:"textDirection"`
	StoreURL           string        `json:"ankiConnectUrl"`
	APIKey             string        `json:"apiKey"`
	Provider           string        `json:"provider"`
}

// DefaultPrompts returns the built-in prompt bundle.
func DefaultPrompts() PromptsConfig {
	return PromptsConfig{
		Name:                   "Default",
		SystemPrompt:           "You help students practice with their study cards. Create questions that test their understanding of the card content. When evaluating answers, be fair and thorough.",
		QuestionInstructions:   "Create a practice question for the student.\n\nPlease respond in this exact format:\nPROMPT: [your question here]",
		EvaluationInstructions: "Please evaluate their answer and respond in this exact format:\nRESULT: PASS or FAIL\nFEEDBACK: [Your concise feedback, 2-3 sentences max.]",
		UILabels: UILabels{
			AnswerLabel: "Your Answer",
		},
	}
}

// Defaults returns the settings used when nothing has been saved yet.
func Defaults() QuizSettings {
	return QuizSettings{
		PromptsConfig:      DefaultPrompts(),
		Direction:          BackToFront,
		MaxWords:           1000,
		ExposeOneSideOnly:  true,
		Model:              "claude-haiku-4-5",
		ShowCardsReference: false,
		TextDirection:      TextAuto,
		StoreURL:           "http://localhost:8765",
		Provider:           ProviderAnthropic,
	}
}

// Validate rejects settings that the quiz loop cannot act on.
func (s QuizSettings) Validate() error {
	if s.Direction != FrontToBack && s.Direction != BackToFront {
		return fmt.Errorf("invalid direction %q", s.Direction)
	}
	if s.MaxWords < 0 {
		return fmt.Errorf("maxWords must not be negative, got %d", s.MaxWords)
	}
	if _, err := ParseTextDirection(string(s.TextDirection)); err != nil {
		return err
	}
	if !isKnownProvider(s.Provider) {
		return fmt.Errorf("unknown LLM provider: %q", s.Provider)
	}
	return nil
}

// DeckName is the deck new notes are added to: the deck filter, or
// "Default" when no filter is set.
func (s QuizSettings) DeckName() string {
	if d := strings.TrimSpace(s.DeckFilter); d != "" {
		return d
	}
	return "Default"
}

// Redacted returns a copy with the API key masked, for display.
func (s QuizSettings) Redacted() QuizSettings {
	if s.APIKey != "" {
		keep := 4
		if len(s.APIKey) <= 8 {
			keep = 0
		}
		s.APIKey = strings.Repeat("*", 8) + s.APIKey[len(s.APIKey)-keep:]
	}
	return s
}

func isKnownProvider(p string) bool {
	for _, k := range knownProviders {
		if p == k {
			return true
		}
	}
	return false
}
