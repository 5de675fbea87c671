package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"csvview/internal/store"
)

// clearCmd deletes the saved CSV.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the locally saved CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.DatabasePath(), store.Options{})
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close()

		if err := st.Clear(context.Background()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved data cleared.")
		return nil
	},
}

// versionCmd prints the build version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the csvview version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "csvview %s\n", version)
	},
}
