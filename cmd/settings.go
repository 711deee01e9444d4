package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/ankiquiz/internal/llm"
	"github.com/abhisek/ankiquiz/internal/quizgen"
	"github.com/abhisek/ankiquiz/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change quiz settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved settings with the API key masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		s, err := settings.Load(cmd.Context(), st.SettingsRepo())
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(s.Redacted(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))

		cfg, err := quizgen.NewService(baseLLMConfig()).ConfigFor(s)
		switch {
		case errors.Is(err, quizgen.ErrAuth):
			fmt.Printf("\nLLM: %s (no API key)\n", s.Provider)
			if d, ok := llm.DiscoverConfig(); ok {
				fmt.Printf("A %s key is set in the environment; try: ankiquiz settings set provider=%s\n", d.Provider, d.Provider)
			}
		case err != nil:
			return err
		default:
			fmt.Printf("\nLLM: %s, key %s\n", cfg.Provider, keySource(s))
		}
		return nil
	},
}

func keySource(s settings.QuizSettings) string {
	if s.APIKey != "" {
		return "from settings"
	}
	return "from environment"
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key=value>...",
	Short: "Change one or more settings",
	Long:  "Change one or more settings. Known keys: " + strings.Join(settings.Keys(), ", ") + ".",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		s, err := settings.Load(cmd.Context(), st.SettingsRepo())
		if err != nil {
			return err
		}
		for _, arg := range args {
			key, value, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("expected key=value, got %q", arg)
			}
			if err := s.Set(strings.TrimSpace(key), value); err != nil {
				return err
			}
		}
		if err := settings.Save(cmd.Context(), st.SettingsRepo(), s); err != nil {
			return err
		}
		fmt.Println("Settings saved.")
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget saved settings and go back to the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.SettingsRepo().Delete(cmd.Context()); err != nil {
			return fmt.Errorf("reset settings: %w", err)
		}
		fmt.Println("Settings reset to defaults.")
		return nil
	},
}

var settingsImportCmd = &cobra.Command{
	Use:   "import-prompts <file>",
	Short: "Load a prompt bundle from a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		pc, err := settings.ParsePromptsConfig(filepath.Base(args[0]), data)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		s, err := settings.Load(cmd.Context(), st.SettingsRepo())
		if err != nil {
			return err
		}
		s.PromptsConfig = pc
		if err := settings.Save(cmd.Context(), st.SettingsRepo(), s); err != nil {
			return err
		}
		fmt.Printf("Imported prompts %q.\n", pc.Name)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	settingsCmd.AddCommand(settingsImportCmd)
}
