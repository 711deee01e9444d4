package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/ankiquiz/internal/app"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	d, err := buildDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	return app.Run(d.services())
}
