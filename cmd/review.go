package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/ankiquiz/internal/deck"
	"github.com/abhisek/ankiquiz/internal/settings"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List notes with their grades",
	RunE: func(cmd *cobra.Command, args []string) error {
		sortFlag, _ := cmd.Flags().GetString("sort")
		limit, _ := cmd.Flags().GetInt("limit")
		mode, err := deck.ParseSortMode(sortFlag)
		if err != nil {
			return err
		}

		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		s, err := settings.Load(cmd.Context(), d.store.SettingsRepo())
		if err != nil {
			return err
		}
		notes, err := d.loader.LoadReviewNotes(cmd.Context(), s.MaxWords, s.DeckFilter, s.StoreURL)
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			fmt.Println("No notes found. Check the deck filter.")
			return nil
		}
		deck.SortNotes(notes, mode, nil)
		if limit > 0 && len(notes) > limit {
			notes = notes[:limit]
		}

		fmt.Printf("%-14s  %-5s  %-28s  %-28s  %s\n", "Note", "Grade", "Front", "Back", "Stats")
		fmt.Println(rule(100))
		for _, n := range notes {
			fmt.Printf("%-14d  %-5s  %-28s  %-28s  %s\n",
				n.NoteID, n.Stats.Grade, clip(n.Front, 28), clip(n.Back, 28), n.Stats.Summary)
		}
		return nil
	},
}

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Edit or delete a single note",
}

var noteSetFieldCmd = &cobra.Command{
	Use:   "set-field <note-id> <field> <value>",
	Short: "Overwrite one field of a note",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		s, err := settings.Load(cmd.Context(), d.store.SettingsRepo())
		if err != nil {
			return err
		}
		if err := d.loader.SaveField(cmd.Context(), id, map[string]string{args[1]: args[2]}, s.StoreURL); err != nil {
			return err
		}
		fmt.Printf("Updated %s of note %d.\n", args[1], id)
		return nil
	},
}

var noteDeleteCmd = &cobra.Command{
	Use:   "delete <note-id>",
	Short: "Delete a note and all of its cards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		s, err := settings.Load(cmd.Context(), d.store.SettingsRepo())
		if err != nil {
			return err
		}
		if err := d.loader.DeleteNote(cmd.Context(), id, s.StoreURL); err != nil {
			return err
		}
		fmt.Printf("Deleted note %d.\n", id)
		return nil
	},
}

func parseNoteID(s string) (int64, error) {
	var id int64
	if _, err := fmt.Sscan(s, &id); err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", s)
	}
	return id, nil
}

func init() {
	reviewCmd.Flags().String("sort", string(deck.SortBadFirst), "Sort order: random, front, back, bad-first or good-first")
	reviewCmd.Flags().IntP("limit", "n", 0, "Show at most this many notes (0 shows all)")

	noteCmd.AddCommand(noteSetFieldCmd)
	noteCmd.AddCommand(noteDeleteCmd)
}
