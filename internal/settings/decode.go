package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decode reads a stored settings blob. Legacy shapes are migrated in
// place; migrated reports whether the caller should write the blob back.
// Fields absent from the blob keep their defaults. An empty blob yields
// Defaults.
func Decode(data []byte) (s QuizSettings, migrated bool, err error) {
	s = Defaults()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, false, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Defaults(), false, fmt.Errorf("decode settings: %w", err)
	}
	if raw == nil {
		return s, false, nil
	}

	migrated = migrate(raw)

	normalized, err := json.Marshal(raw)
	if err != nil {
		return Defaults(), false, fmt.Errorf("decode settings: %w", err)
	}
	if err := json.Unmarshal(normalized, &s); err != nil {
		return Defaults(), false, fmt.Errorf("decode settings: %w", err)
	}
	if s.Provider == "" {
		s.Provider = ProviderAnthropic
	}
	return s, migrated, nil
}

// Encode serializes settings for storage.
func Encode(s QuizSettings) ([]byte, error) {
	return json.Marshal(s)
}

// migrate rewrites legacy keys and reports whether anything changed.
func migrate(raw map[string]any) bool {
	changed := false

	// A bare system prompt predates prompt bundles.
	if sp, ok := raw["systemPrompt"].(string); ok && sp != "" {
		if _, has := raw["promptsConfig"]; !has {
			pc := DefaultPrompts()
			pc.SystemPrompt = sp
			raw["promptsConfig"] = pc
			delete(raw, "systemPrompt")
			changed = true
		}
	}

	if v, ok := raw["showVocabReference"]; ok {
		if _, has := raw["showCardsReference"]; !has {
			raw["showCardsReference"] = v
			delete(raw, "showVocabReference")
			changed = true
		}
	}

	if v, ok := raw["anthropicApiKey"]; ok {
		if _, has := raw["apiKey"]; !has {
			raw["apiKey"] = v
		}
		delete(raw, "anthropicApiKey")
		changed = true
	}

	return changed
}
