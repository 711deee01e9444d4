package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/ankiquiz/internal/anki"
	"github.com/abhisek/ankiquiz/internal/deck"
	"github.com/abhisek/ankiquiz/internal/grading"
	"github.com/abhisek/ankiquiz/internal/llm"
	"github.com/abhisek/ankiquiz/internal/quizgen"
	"github.com/abhisek/ankiquiz/internal/session"
	"github.com/abhisek/ankiquiz/internal/settings"
)

type fakeDeck struct {
	vocab    []deck.VocabItem
	notes    []deck.ReviewNote
	err      error
	updated  map[int64]map[string]string
	deleted  []int64
	savedTo  string
	storeURL string
}

func (f *fakeDeck) LoadVocabulary(_ context.Context, _ int, _, url string) ([]deck.VocabItem, error) {
	f.storeURL = url
	return f.vocab, f.err
}

func (f *fakeDeck) LoadReviewNotes(_ context.Context, _ int, _, _ string) ([]deck.ReviewNote, error) {
	return f.notes, f.err
}

func (f *fakeDeck) SaveField(_ context.Context, id int64, fields map[string]string, _ string) error {
	if f.updated == nil {
		f.updated = map[int64]map[string]string{}
	}
	f.updated[id] = fields
	return f.err
}

func (f *fakeDeck) DeleteNote(_ context.Context, id int64, _ string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeDeck) SaveCards(_ context.Context, cards []*deck.GeneratedCard, deckName, _, _ string) error {
	f.savedTo = deckName
	var errs []error
	for _, c := range cards {
		if c.Saved || c.Saving {
			continue
		}
		if c.Front == "bad" {
			c.Err = errors.New("cannot create note because it is a duplicate")
			errs = append(errs, c.Err)
			continue
		}
		c.Saved = true
	}
	return errors.Join(errs...)
}

type memBlob struct {
	data    []byte
	version int
}

func (m *memBlob) Load(context.Context) ([]byte, int, error) { return m.data, m.version, nil }

func (m *memBlob) Save(_ context.Context, data []byte, version int) error {
	m.data, m.version = data, version
	return nil
}

type testEnv struct {
	srv  *httptest.Server
	deck *fakeDeck
	mock *llm.MockProvider
	blob *memBlob
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		deck: &fakeDeck{vocab: []deck.VocabItem{{Front: "perro", Back: "dog"}}},
		mock: llm.NewMockProvider(),
		blob: &memBlob{},
	}
	s := settings.Defaults()
	s.APIKey = "sk-test-123456789"
	require.NoError(t, settings.Save(context.Background(), env.blob, s))

	svc := quizgen.NewService(llm.DefaultConfig(), quizgen.WithProviderFactory(
		func(context.Context, llm.Config) (llm.Provider, error) { return env.mock, nil }))
	machine := session.New(env.deck, svc)

	env.srv = httptest.NewServer(NewServer(machine, env.deck, svc, env.blob, nil).Router())
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health", "", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestQuizFlow(t *testing.T) {
	env := newTestEnv(t)
	env.mock.AddResponse(llm.MockResponse{Text: "PROMPT: How do you say dog?"})
	env.mock.AddResponse(llm.MockResponse{Text: "RESULT: PASS\nFEEDBACK: Nice."})

	var raw map[string]any
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/quiz", "", &raw))
	assert.Equal(t, "idle", raw["phase"])

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/quiz/question", "", &raw))
	assert.Equal(t, "awaiting-answer", raw["phase"])
	assert.Equal(t, "How do you say dog?", raw["prompt"])
	assert.Equal(t, "http://localhost:8765", env.deck.storeURL)

	var errBody ErrorResponse
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/v1/quiz/answer", `{"answer":"  "}`, &errBody))
	assert.Equal(t, "EMPTY_ANSWER", errBody.Error.Code)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/quiz/answer", `{"answer":"perro"}`, &raw))
	assert.Equal(t, "answered", raw["phase"])
	assert.Equal(t, "PASS", raw["result"])
	assert.Equal(t, "Nice.", raw["feedback"])

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/v1/quiz/answer", `{"answer":"again"}`, &errBody))
	assert.Equal(t, "INVALID_TRANSITION", errBody.Error.Code)
}

func TestQuizAdvance(t *testing.T) {
	env := newTestEnv(t)
	env.mock.AddResponse(llm.MockResponse{Text: "PROMPT: q1"})

	var resp struct {
		Action string         `json:"action"`
		State  map[string]any `json:"state"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/quiz/advance", "", &resp))
	assert.Equal(t, "question", resp.Action)
	assert.Equal(t, "q1", resp.State["prompt"])

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/quiz/advance", `{"input":""}`, &resp))
	assert.Equal(t, "none", resp.Action)
	assert.Equal(t, 1, env.mock.CallCount())
}

func TestQuizNoVocabulary(t *testing.T) {
	env := newTestEnv(t)
	env.deck.vocab = nil

	var errBody ErrorResponse
	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPost, "/api/v1/quiz/question", "", &errBody))
	assert.Equal(t, "NO_VOCABULARY", errBody.Error.Code)
}

func TestQuizStoreUnreachable(t *testing.T) {
	env := newTestEnv(t)
	env.deck.vocab = nil
	env.deck.err = &anki.ConnectionError{URL: "http://localhost:8765", Err: errors.New("refused")}

	var errBody ErrorResponse
	assert.Equal(t, http.StatusBadGateway, env.do(t, http.MethodPost, "/api/v1/quiz/question", "", &errBody))
	assert.Equal(t, "STORE_UNREACHABLE", errBody.Error.Code)
	assert.Contains(t, errBody.Error.Message, "http://localhost:8765")
	assert.NotEmpty(t, errBody.Error.RequestID)
}

func TestReviewNotesSorted(t *testing.T) {
	env := newTestEnv(t)
	env.deck.notes = []deck.ReviewNote{
		{NoteID: 1, Front: "a", Stats: grading.NoteStats{Grade: grading.GradeS}},
		{NoteID: 2, Front: "b", Stats: grading.NoteStats{Grade: grading.GradeF}},
		{NoteID: 3, Front: "c", Stats: grading.NoteStats{Grade: grading.GradeNew}},
	}

	var resp reviewResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/review/notes?sort=bad-first", "", &resp))
	require.Len(t, resp.Notes, 3)
	assert.Equal(t, []int64{2, 1, 3}, []int64{resp.Notes[0].NoteID, resp.Notes[1].NoteID, resp.Notes[2].NoteID})

	var errBody ErrorResponse
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/review/notes?sort=sideways", "", &errBody))
}

func TestNoteEditAndDelete(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodPut, "/api/v1/notes/42/fields", `{"fields":{"Back":"hola"}}`, nil))
	assert.Equal(t, "hola", env.deck.updated[42]["Back"])

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/v1/notes/abc/fields", `{"fields":{"Back":"x"}}`, nil))
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/v1/notes/42/fields", `{"fields":{}}`, nil))

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/notes/7", "", nil))
	assert.Equal(t, []int64{7}, env.deck.deleted)
}

func TestGenerateAndSaveCards(t *testing.T) {
	env := newTestEnv(t)
	env.mock.AddResponse(llm.MockResponse{Text: "```json\n[{\"front\":\"good\",\"back\":\"bueno\"},{\"front\":\"bad\",\"back\":\"malo\"}]\n```"})

	var gen struct {
		Cards []map[string]any `json:"cards"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/cards/generate", `{"prompt":"adjectives","includeDeck":true}`, &gen))
	require.Len(t, gen.Cards, 2)
	assert.NotEmpty(t, gen.Cards[0]["id"])
	assert.Equal(t, false, gen.Cards[0]["saved"])

	last, _ := env.mock.LastCall()
	assert.Contains(t, last.Messages[0].Content, "Front: perro | Back: dog")

	body, _ := json.Marshal(map[string]any{"cards": gen.Cards})
	var saved struct {
		Cards []map[string]any `json:"cards"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/cards/save", string(body), &saved))
	require.Len(t, saved.Cards, 2)
	assert.Equal(t, true, saved.Cards[0]["saved"])
	assert.Equal(t, false, saved.Cards[1]["saved"])
	assert.Contains(t, saved.Cards[1]["error"], "duplicate")
	assert.Equal(t, "Default", env.deck.savedTo)
}

func TestSaveCardsIgnoresIncomingSavingFlag(t *testing.T) {
	env := newTestEnv(t)

	var saved struct {
		Cards []map[string]any `json:"cards"`
	}
	body := `{"cards":[{"id":"c1","front":"good","back":"bueno","saving":true}]}`
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/cards/save", body, &saved))
	require.Len(t, saved.Cards, 1)
	assert.Equal(t, true, saved.Cards[0]["saved"])
	assert.Equal(t, false, saved.Cards[0]["saving"])
}

func TestGenerateCardsParseError(t *testing.T) {
	env := newTestEnv(t)
	env.mock.AddResponse(llm.MockResponse{Text: "Sorry, I cannot help with that."})

	var errBody ErrorResponse
	assert.Equal(t, http.StatusBadGateway, env.do(t, http.MethodPost, "/api/v1/cards/generate", `{"prompt":"x"}`, &errBody))
	assert.Equal(t, "PARSE_ERROR", errBody.Error.Code)
	assert.Equal(t, "Sorry, I cannot help with that.", errBody.Error.Detail)
}

func TestSettingsRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	var got map[string]any
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/settings", "", &got))
	masked, _ := got["apiKey"].(string)
	assert.True(t, strings.HasPrefix(masked, "********"))
	assert.True(t, strings.HasSuffix(masked, "6789"))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/v1/settings",
		`{"deckFilter":"Spanish","apiKey":"`+masked+`"}`, &got))
	assert.Equal(t, "Spanish", got["deckFilter"])

	stored, _, err := settings.Decode(env.blob.data)
	require.NoError(t, err)
	assert.Equal(t, "Spanish", stored.DeckFilter)
	assert.Equal(t, "sk-test-123456789", stored.APIKey, "masked key must not overwrite the real one")

	var errBody ErrorResponse
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/v1/settings", `{"direction":"sideways"}`, &errBody))
}

func TestImportPrompts(t *testing.T) {
	env := newTestEnv(t)

	yamlDoc := `name: Strict
systemPrompt: Be strict.
questionInstructions: "Ask. PROMPT: ..."
evaluationInstructions: "RESULT: PASS or FAIL"
uiLabels:
  answerLabel: Answer
  tip: Think first
`
	var pc settings.PromptsConfig
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/settings/prompts?filename=strict.yaml", yamlDoc, &pc))
	assert.Equal(t, "Strict", pc.Name)

	stored, _, err := settings.Decode(env.blob.data)
	require.NoError(t, err)
	assert.Equal(t, "Be strict.", stored.PromptsConfig.SystemPrompt)

	var errBody ErrorResponse
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/v1/settings/prompts?filename=p.json", `{"name":"x"}`, &errBody))
	assert.Equal(t, `Missing or invalid "systemPrompt" field`, errBody.Error.Message)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{session.ErrBusy, http.StatusConflict},
		{quizgen.ErrAuth, http.StatusUnauthorized},
		{&llm.ErrUnauthorized{}, http.StatusUnauthorized},
		{&anki.ProtocolError{Action: "addNote", Message: "dup"}, http.StatusBadGateway},
		{&llm.ErrRateLimit{}, http.StatusTooManyRequests},
		{errors.New("??"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := classify(tt.err)
		assert.Equal(t, tt.status, status, "%v", tt.err)
	}
}
