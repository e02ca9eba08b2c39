package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "palaver",
	Short: "Palaver server",
	Long: `Palaver is a small realtime web application for managing user profiles.

Available commands:
  serve    Start the HTTP server
  version  Print the version number

Use "palaver [command] --help" for more information about a specific command.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
