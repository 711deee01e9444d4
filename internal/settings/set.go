package settings

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type setter func(s *QuizSettings, v string) error

var setters = map[string]setter{
	"direction": func(s *QuizSettings, v string) error {
		d, err := ParseDirection(v)
		if err != nil {
			return err
		}
		s.Direction = d
		return nil
	},
	"maxWords": func(s *QuizSettings, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return fmt.Errorf("maxWords must be a non-negative integer, got %q", v)
		}
		s.MaxWords = n
		return nil
	},
	"deckFilter": func(s *QuizSettings, v string) error {
		s.DeckFilter = v
		return nil
	},
	"exposeOneSideOnly": boolSetter(func(s *QuizSettings) *bool { return &s.ExposeOneSideOnly }),
	"model": func(s *QuizSettings, v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("model must not be empty")
		}
		s.Model = strings.TrimSpace(v)
		return nil
	},
	"showCardsReference": boolSetter(func(s *QuizSettings) *bool { return &s.ShowCardsReference }),
	"textDirection": func(s *QuizSettings, v string) error {
		d, err := ParseTextDirection(strings.ToLower(strings.TrimSpace(v)))
		if err != nil {
			return err
		}
		s.TextDirection = d
		return nil
	},
	"ankiConnectUrl": func(s *QuizSettings, v string) error {
		s.StoreURL = strings.TrimSpace(v)
		return nil
	},
	"apiKey": func(s *QuizSettings, v string) error {
		s.APIKey = strings.TrimSpace(v)
		return nil
	},
	"provider": func(s *QuizSettings, v string) error {
		p := strings.ToLower(strings.TrimSpace(v))
		if !isKnownProvider(p) {
			return fmt.Errorf("unknown LLM provider: %q", v)
		}
		s.Provider = p
		return nil
	},
}

func boolSetter(field func(*QuizSettings) *bool) setter {
	return func(s *QuizSettings, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", v)
		}
		*field(s) = b
		return nil
	}
}

// Keys lists the settings that Set accepts, sorted.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set parses value and assigns it to the named setting.
func (s *QuizSettings) Set(key, value string) error {
	fn, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := fn(s, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}
