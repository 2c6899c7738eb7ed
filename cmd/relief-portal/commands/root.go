package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "relief-portal",
	Short: "Relief portal data gateway",
	Long: `relief-portal aggregates disaster relief data from a Supabase project
(or a local Postgres database) behind a query cache and a single session.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
