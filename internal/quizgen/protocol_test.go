package quizgen

import "testing"

func TestParseQuestion(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		prompt string
	}{
		{"marker line", "Here you go.\nPROMPT: What is the capital?\n", "What is the capital?"},
		{"trims", "PROMPT:    ¿Qué es esto?   ", "¿Qué es esto?"},
		{"crlf", "PROMPT: dog\r\nthanks", "dog"},
		{"last wins", "PROMPT: first\nPROMPT: second", "second"},
		{"not at line start", "  PROMPT: indented", ""},
		{"no marker", "I could not think of a question.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ParseQuestion(tt.in)
			if q.Prompt != tt.prompt {
				t.Errorf("Prompt = %q, want %q", q.Prompt, tt.prompt)
			}
			if q.Raw != tt.in {
				t.Errorf("Raw = %q, want the full reply", q.Raw)
			}
		})
	}
}

func TestParseEvaluation(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		result   Verdict
		feedback string
	}{
		{"pass", "RESULT: PASS\nFEEDBACK: Good job", Pass, "Good job"},
		{"fail", "RESULT: FAIL\nFEEDBACK: Not quite.", Fail, "Not quite."},
		{"unknown verdict", "RESULT: MAYBE\nFEEDBACK: hmm", Fail, "hmm"},
		{"lowercase verdict ignored", "RESULT: pass", Fail, ""},
		{"missing markers", "Looks right to me!", Fail, ""},
		{"invalid after valid keeps valid", "RESULT: PASS\nRESULT: ???", Pass, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ParseEvaluation(tt.in)
			if e.Result != tt.result {
				t.Errorf("Result = %q, want %q", e.Result, tt.result)
			}
			if e.Feedback != tt.feedback {
				t.Errorf("Feedback = %q, want %q", e.Feedback, tt.feedback)
			}
			if e.Raw != tt.in {
				t.Errorf("Raw not preserved")
			}
			if e.Passed() != (tt.result == Pass) {
				t.Errorf("Passed() = %v", e.Passed())
			}
		})
	}
}
