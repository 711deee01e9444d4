package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/ankiquiz/internal/settings"
	"github.com/abhisek/ankiquiz/internal/store"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func loadSaved(t *testing.T, dbPath string) settings.QuizSettings {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	s, err := settings.Load(context.Background(), st.SettingsRepo())
	require.NoError(t, err)
	return s
}

func TestSettingsSetAndReset(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "quiz.db")

	require.NoError(t, execute(t, "--db", dbPath, "settings", "set", "deckFilter=Spanish", "maxWords=50", "direction=front->back"))
	s := loadSaved(t, dbPath)
	assert.Equal(t, "Spanish", s.DeckFilter)
	assert.Equal(t, 50, s.MaxWords)
	assert.Equal(t, settings.FrontToBack, s.Direction)

	require.NoError(t, execute(t, "--db", dbPath, "settings", "reset"))
	assert.Equal(t, settings.Defaults(), loadSaved(t, dbPath))
}

func TestSettingsSet_Rejects(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "quiz.db")

	assert.Error(t, execute(t, "--db", dbPath, "settings", "set", "maxWords"))
	assert.Error(t, execute(t, "--db", dbPath, "settings", "set", "nope=1"))
	assert.Error(t, execute(t, "--db", dbPath, "settings", "set", "provider=skynet"))
	assert.Equal(t, settings.Defaults(), loadSaved(t, dbPath))
}

func TestSettingsImportPrompts(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "quiz.db")
	file := filepath.Join(dir, "tutor.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`name: Tutor
systemPrompt: You are a patient tutor.
questionInstructions: "Ask one question.\nPROMPT: ..."
evaluationInstructions: "RESULT: PASS or FAIL\nFEEDBACK: ..."
uiLabels:
  answerLabel: Answer
  tip: Keep it short
`), 0o644))

	require.NoError(t, execute(t, "--db", dbPath, "settings", "import-prompts", file))
	s := loadSaved(t, dbPath)
	assert.Equal(t, "Tutor", s.PromptsConfig.Name)
	assert.Equal(t, "Keep it short", s.PromptsConfig.UILabels.Tip)
}

func TestParseNoteID(t *testing.T) {
	id, err := parseNoteID("1700000000123")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), id)

	for _, bad := range []string{"", "abc", "0", "-4"} {
		_, err := parseNoteID(bad)
		assert.Error(t, err, bad)
	}
}
