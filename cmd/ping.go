package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/ankiquiz/internal/settings"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that AnkiConnect is reachable",
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
		v, err := d.loader.Ping(cmd.Context(), s.StoreURL)
		if err != nil {
			return err
		}
		fmt.Printf("AnkiConnect at %s is up (API version %d).\n", s.StoreURL, v)
		return nil
	},
}
