package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/ankiquiz/internal/quizgen"
	"github.com/abhisek/ankiquiz/internal/session"
	"github.com/abhisek/ankiquiz/internal/settings"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Run a quiz in plain line mode",
	Long: `Run a quiz without the full-screen interface.

Type your answer and press enter. Empty lines move on after a verdict.
Commands: :skip asks a different question, :reload refetches cards, :q quits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		s, err := settings.Load(cmd.Context(), d.store.SettingsRepo())
		if err != nil {
			return err
		}
		return runLineQuiz(cmd.Context(), d.machine(), s, os.Stdin, cmd.OutOrStdout())
	},
}

// runLineQuiz drives m from lines read on in until :q or end of input.
func runLineQuiz(ctx context.Context, m *session.Machine, s settings.QuizSettings, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	label := s.PromptsConfig.UILabels.AnswerLabel
	if label == "" {
		label = "Your Answer"
	}

	step := func(line string) error {
		var err error
		switch line {
		case ":skip":
			err = m.Skip(ctx, s)
		case ":reload":
			if err = m.Reload(ctx, s); err == nil {
				fmt.Fprintf(out, "Reloaded %d cards.\n", m.Snapshot().VocabSize)
				return nil
			}
		default:
			_, err = m.Advance(ctx, s, line)
		}
		return err
	}

	render := func() {
		snap := m.Snapshot()
		switch snap.Phase {
		case session.AwaitingAnswer:
			prompt := snap.Prompt
			if prompt == "" {
				prompt = snap.Question
			}
			fmt.Fprintf(out, "\nQ%d. %s\n", snap.Round, prompt)
			if s.PromptsConfig.UILabels.Tip != "" {
				fmt.Fprintf(out, "(%s)\n", s.PromptsConfig.UILabels.Tip)
			}
			fmt.Fprintf(out, "%s> ", label)
		case session.Idle:
			fmt.Fprintln(out, "Press enter to try again.")
		case session.Answered:
			fmt.Fprintf(out, "%s  %s\n", snap.Result, snap.Feedback)
			fmt.Fprintf(out, "Score: %d/%d. Press enter for the next question.\n", snap.Passed, snap.Answered)
		}
	}

	// handle runs one line. Only errors the learner cannot fix from the
	// prompt end the session.
	handle := func(line string) error {
		before := m.Phase()
		if err := step(line); err != nil {
			if errors.Is(err, session.ErrNoVocabulary) || errors.Is(err, quizgen.ErrAuth) {
				return err
			}
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		if before == session.AwaitingAnswer && m.Phase() == before && line == "" {
			fmt.Fprintf(out, "%s> ", label)
			return nil
		}
		render()
		return nil
	}

	if err := handle(""); err != nil {
		return err
	}
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == ":q" {
			break
		}
		if err := handle(line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	snap := m.Snapshot()
	fmt.Fprintf(out, "\nSession over: %d of %d passed.\n", snap.Passed, snap.Answered)
	return nil
}
