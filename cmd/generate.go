package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/ankiquiz/internal/deck"
	"github.com/abhisek/ankiquiz/internal/quizgen"
	"github.com/abhisek/ankiquiz/internal/settings"
)

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Ask the model for new cards, optionally saving them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		save, _ := cmd.Flags().GetBool("save")
		deckName, _ := cmd.Flags().GetString("deck")
		model, _ := cmd.Flags().GetString("model")

		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		s, err := settings.Load(ctx, d.store.SettingsRepo())
		if err != nil {
			return err
		}

		// Existing cards steer the model away from duplicates. A missing
		// store only loses that context.
		existing, err := d.loader.LoadVocabulary(ctx, s.MaxWords, s.DeckFilter, s.StoreURL)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: generating without deck context: %v\n", err)
		}

		drafts, err := d.quizgen.GenerateCards(ctx, strings.Join(args, " "), existing, s)
		if err != nil {
			var pe *quizgen.ParseError
			if errors.As(err, &pe) {
				return fmt.Errorf("%w\nreply began: %s", err, pe.Excerpt())
			}
			return err
		}

		cards := make([]*deck.GeneratedCard, 0, len(drafts))
		for i, dr := range drafts {
			fmt.Printf("%2d. %s  →  %s\n", i+1, dr.Front, dr.Back)
			cards = append(cards, deck.NewGeneratedCard(dr.Front, dr.Back))
		}
		if !save {
			return nil
		}

		if deckName == "" {
			deckName = s.DeckName()
		}
		saveErr := d.loader.SaveCards(ctx, cards, deckName, model, s.StoreURL)
		saved := 0
		for i, c := range cards {
			if c.Saved {
				saved++
				continue
			}
			fmt.Printf("card %d not saved: %s\n", i+1, c.ErrorText())
		}
		fmt.Printf("Saved %d of %d cards to %q.\n", saved, len(cards), deckName)
		if saved == 0 && saveErr != nil {
			return saveErr
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().Bool("save", false, "Add the generated cards to Anki")
	generateCmd.Flags().String("deck", "", "Deck to save into (default: the deck filter, or Default)")
	generateCmd.Flags().String("model", deck.DefaultModel, "Note type for saved cards")
}
