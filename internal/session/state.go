package session

// Phase is where a quiz round stands.
type Phase int

const (
	Idle            Phase = iota // No question yet
	VocabLoading                 // Fetching vocabulary from the store
	QuestionPending              // Waiting for the model to write a question
	AwaitingAnswer               // Question shown, learner typing
	Evaluating                   // Waiting for the model's verdict
	Answered                     // Verdict shown; next question may be requested
)

var phaseNames = [...]string{"idle", "vocab-loading", "question-pending", "awaiting-answer", "evaluating", "answered"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// InFlight reports whether a network call is running in this phase.
func (p Phase) InFlight() bool {
	return p == VocabLoading || p == QuestionPending || p == Evaluating
}

// MarshalText renders the phase name, for JSON views.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Action is what Advance decided to do.
type Action int

const (
	ActionNone Action = iota
	ActionQuestion
	ActionSubmit
)

func (a Action) String() string {
	switch a {
	case ActionQuestion:
		return "question"
	case ActionSubmit:
		return "submit"
	}
	return "none"
}

// advanceTable maps each phase to what the single advance trigger does.
// Phases not listed do nothing.
var advanceTable = map[Phase]Action{
	Idle:           ActionQuestion,
	Answered:       ActionQuestion,
	AwaitingAnswer: ActionSubmit,
}

// Snapshot is an immutable view of a Machine for rendering.
type Snapshot struct {
	SessionID string `json:"sessionId"`
	Phase     Phase  `json:"phase"`
	VocabSize int    `json:"vocabSize"`
	Round     int    `json:"round"`
	Question  string `json:"question"`
	Prompt    string `json:"prompt"`
	Answer    string `json:"answer"`
	Result    string `json:"result,omitempty"`
	Feedback  string `json:"feedback,omitempty"`
	Raw       string `json:"feedbackFull,omitempty"`
	Passed    int    `json:"passed"`
	Answered  int    `json:"answered"`
	Error     string `json:"error,omitempty"`
}
