package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/ankiquiz/internal/anki"
	"github.com/abhisek/ankiquiz/internal/deck"
	"github.com/abhisek/ankiquiz/internal/llm"
	"github.com/abhisek/ankiquiz/internal/quizgen"
	"github.com/abhisek/ankiquiz/internal/screen"
	"github.com/abhisek/ankiquiz/internal/session"
	"github.com/abhisek/ankiquiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "ankiquiz",
	Short: "Quiz yourself on your Anki cards",
	Long:  "ankiquiz reads your Anki collection through AnkiConnect, asks a language model to write questions about your cards, and grades your answers.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		level, _ := cmd.Flags().GetString("log-level")
		return setupLogging(level)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ANKIQUIZ_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP timeout for AnkiConnect requests (0 means none)")

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogging(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then ANKIQUIZ_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// baseLLMConfig reads ANKIQUIZ_* variables and fills any missing provider
// key from the provider's standard variable.
func baseLLMConfig() llm.Config {
	cfg := llm.ConfigFromEnv()
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	fill(&cfg.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	fill(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	fill(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	fill(&cfg.OpenRouter.APIKey, "OPENROUTER_API_KEY")
	return cfg
}

// deps is everything a command needs, built from the flags.
type deps struct {
	store   *store.Store
	loader  *deck.Loader
	quizgen *quizgen.Service
}

func buildDeps(cmd *cobra.Command) (*deps, error) {
	st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}

	var clientOpts []anki.Option
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		clientOpts = append(clientOpts, anki.WithHTTPClient(&http.Client{Timeout: timeout}))
	}

	return &deps{
		store:   st,
		loader:  deck.NewLoader(clientOpts),
		quizgen: quizgen.NewService(baseLLMConfig(), quizgen.WithEventRepo(st.EventRepo())),
	}, nil
}

func (d *deps) machine() *session.Machine {
	return session.New(d.loader, d.quizgen, session.WithRecorder(d.store.EventRepo()))
}

func (d *deps) services() screen.Services {
	return screen.Services{
		Machine:  d.machine(),
		Deck:     d.loader,
		Cards:    d.quizgen,
		Settings: d.store.SettingsRepo(),
		Events:   d.store.EventRepo(),
	}
}

func (d *deps) Close() error {
	return d.store.Close()
}
