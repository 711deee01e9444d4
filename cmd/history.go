package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/ankiquiz/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past quiz sessions and answers",
}

var historySessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List quiz sessions with their scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		sums, err := s.EventRepo().QuerySessionSummaries(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(sums) == 0 {
			fmt.Println("No quiz sessions yet.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %8s\n", "Session", "Started", "Score")
		fmt.Println(rule(67))
		for _, ss := range sums {
			fmt.Printf("%-36s  %-19s  %8s\n",
				ss.SessionID, ss.Started.Local().Format(timeLayout), fmt.Sprintf("%d/%d", ss.Passed, ss.Answered))
		}
		return nil
	},
}

var historyAnswersCmd = &cobra.Command{
	Use:   "answers [session-id]",
	Short: "List answers, optionally for one session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		opts := store.QueryOpts{Limit: limit}
		if len(args) == 1 {
			opts.Session = args[0]
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		answers, err := s.EventRepo().QueryAnswers(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query answers: %w", err)
		}
		if len(answers) == 0 {
			fmt.Println("No answers recorded.")
			return nil
		}
		for _, a := range answers {
			fmt.Printf("%s  %-4s  %s\n", a.Timestamp.Local().Format(timeLayout), a.Result, a.Question)
			fmt.Printf("    answer:   %s\n", a.Answer)
			if a.Feedback != "" {
				fmt.Printf("    feedback: %s\n", a.Feedback)
			}
		}
		return nil
	},
}

func init() {
	historySessionsCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
	historyAnswersCmd.Flags().IntP("limit", "n", 50, "Number of answers to show")

	historyCmd.AddCommand(historySessionsCmd)
	historyCmd.AddCommand(historyAnswersCmd)
}
