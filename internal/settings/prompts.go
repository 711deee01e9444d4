package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidStructure is returned when a prompts file does not decode to an
// object.
var ErrInvalidStructure = errors.New("Invalid JSON structure")

// ParsePromptsConfig decodes a prompts bundle from a JSON or YAML file.
// The format follows the file extension; anything else is tried as YAML
// first and then as JSON. Every field must be a non-empty string.
func ParsePromptsConfig(filename string, data []byte) (PromptsConfig, error) {
	var doc any
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case ".json":
		err = json.Unmarshal(data, &doc)
	default:
		if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
			doc = nil
			err = json.Unmarshal(data, &doc)
		}
	}
	if err != nil {
		return PromptsConfig{}, fmt.Errorf("parse prompts file: %w", err)
	}

	return validatePrompts(doc)
}

func validatePrompts(doc any) (PromptsConfig, error) {
	m, ok := asMap(doc)
	if !ok {
		return PromptsConfig{}, ErrInvalidStructure
	}

	var pc PromptsConfig
	fields := []struct {
		key string
		dst *string
	}{
		{"name", &pc.Name},
		{"systemPrompt", &pc.SystemPrompt},
		{"questionInstructions", &pc.QuestionInstructions},
		{"evaluationInstructions", &pc.EvaluationInstructions},
	}
	for _, f := range fields {
		v, ok := m[f.key].(string)
		if !ok || v == "" {
			return PromptsConfig{}, missingField(f.key)
		}
		*f.dst = v
	}

	labels, ok := asMap(m["uiLabels"])
	if !ok {
		return PromptsConfig{}, missingField("uiLabels")
	}
	if pc.UILabels.AnswerLabel, ok = labels["answerLabel"].(string); !ok || pc.UILabels.AnswerLabel == "" {
		return PromptsConfig{}, missingField("uiLabels.answerLabel")
	}
	if pc.UILabels.Tip, ok = labels["tip"].(string); !ok || pc.UILabels.Tip == "" {
		return PromptsConfig{}, missingField("uiLabels.tip")
	}

	return pc, nil
}

func missingField(name string) error {
	return fmt.Errorf("Missing or invalid %q field", name)
}

// asMap accepts both JSON objects and YAML mappings.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}
